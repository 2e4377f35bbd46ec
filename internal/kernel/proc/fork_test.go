package proc

import (
	"testing"
	"time"
)

func TestForkWaitReturnsChildStatus(t *testing.T) {
	tbl := testTable(t, 8)
	result := make(chan [2]int, 1)

	tbl.Boot(func(sc *Syscalls) {
		childPID, err := sc.Fork(func(csc *Syscalls) {
			csc.Exit(7)
		})
		if err != nil {
			t.Errorf("Fork: %v", err)
			return
		}
		pid, status, err := sc.Wait()
		if err != nil {
			t.Errorf("Wait: %v", err)
			return
		}
		if pid != childPID {
			t.Errorf("Wait pid = %d, want %d", pid, childPID)
		}
		result <- [2]int{pid, status}
	})

	runScheduler(t, tbl, 2)

	select {
	case r := <-result:
		if r[1] != 7 {
			t.Fatalf("child exit status = %d, want 7", r[1])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fork/wait scenario never completed")
	}
}

// TestForkTrapframeRoundTrip exercises fork's round-trip property
// directly on the trapframe, since a real fork communicates the child
// pid / zero result through a0, not a Go return value.
func TestForkTrapframeRoundTrip(t *testing.T) {
	tbl := testTable(t, 8)
	settled := make(chan struct{})
	var childPID int

	parent := tbl.Boot(func(sc *Syscalls) {
		pid, err := sc.Fork(func(csc *Syscalls) {
			csc.SleepTicks(1 << 30)
		})
		if err != nil {
			t.Errorf("Fork: %v", err)
			return
		}
		childPID = pid
		close(settled)
	})

	runScheduler(t, tbl, 2)

	select {
	case <-settled:
	case <-time.After(time.Second):
		t.Fatal("fork never completed")
	}
	time.Sleep(10 * time.Millisecond) // let the child goroutine reach its park point

	if got := parent.Trapframe().A0; got != uint64(childPID) {
		t.Fatalf("parent trapframe.A0 = %d, want child pid %d", got, childPID)
	}
	child := tbl.findByPID(childPID)
	if child == nil {
		t.Fatalf("no slot found for child pid %d", childPID)
	}
	if got := child.Trapframe().A0; got != 0 {
		t.Fatalf("child trapframe.A0 = %d, want 0", got)
	}
}

func TestWaitWithNoChildrenReturnsError(t *testing.T) {
	tbl := testTable(t, 4)
	done := make(chan error, 1)
	tbl.Boot(func(sc *Syscalls) {
		_, _, err := sc.Wait()
		done <- err
	})
	runScheduler(t, tbl, 1)
	select {
	case err := <-done:
		if err != ErrNoChildren {
			t.Fatalf("Wait() err = %v, want ErrNoChildren", err)
		}
	case <-time.After(time.Second):
		t.Fatal("wait-with-no-children scenario never completed")
	}
}

func TestOrphanReparentedToInit(t *testing.T) {
	tbl := testTable(t, 8)
	grandchildPID := make(chan int, 1)
	childReaped := make(chan struct{})

	init := tbl.Boot(func(sc *Syscalls) {
		_, err := sc.Fork(func(csc *Syscalls) {
			gpid, _ := csc.Fork(func(gsc *Syscalls) {
				gsc.SleepTicks(1 << 30)
			})
			grandchildPID <- gpid
			csc.Exit(0)
		})
		if err != nil {
			t.Errorf("Fork: %v", err)
			return
		}
		sc.Wait() // reaps the (non-orphan) direct child
		close(childReaped)
	})

	runScheduler(t, tbl, 3)

	var gpid int
	select {
	case gpid = <-grandchildPID:
	case <-time.After(time.Second):
		t.Fatal("grandchild never forked")
	}
	select {
	case <-childReaped:
	case <-time.After(time.Second):
		t.Fatal("child was never reaped")
	}
	time.Sleep(10 * time.Millisecond)

	gp := tbl.findByPID(gpid)
	if gp == nil {
		t.Fatalf("no slot found for grandchild pid %d", gpid)
	}
	tbl.waitLock.Lock()
	parentIdx := gp.parent
	tbl.waitLock.Unlock()
	if parentIdx != init.index {
		t.Fatalf("grandchild's parent index = %d, want init's index %d", parentIdx, init.index)
	}
}

