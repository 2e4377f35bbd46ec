package proc

import (
	"context"
	"testing"
	"time"
)

func testTable(t *testing.T, nproc int) *Table {
	t.Helper()
	return NewTable(TableConfig{NPROC: nproc}, nil)
}

func runScheduler(t *testing.T, tbl *Table, ncpu int) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tbl.RunScheduler(ctx, ncpu, time.Millisecond)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestAllocPIDMonotonic(t *testing.T) {
	tbl := testTable(t, 4)
	a := tbl.AllocPID()
	b := tbl.AllocPID()
	if b != a+1 {
		t.Fatalf("AllocPID sequence = %d, %d; want consecutive", a, b)
	}
}

func TestBootCreatesRunnableInit(t *testing.T) {
	tbl := testTable(t, 4)
	done := make(chan struct{})
	init := tbl.Boot(func(sc *Syscalls) {
		close(done)
	})
	if init.PID != 1 {
		t.Fatalf("init PID = %d, want 1", init.PID)
	}
	runScheduler(t, tbl, 1)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("init program never ran")
	}
}

func TestAllocprocExhaustion(t *testing.T) {
	tbl := testTable(t, 1)
	tbl.Boot(func(sc *Syscalls) {
		sc.SleepTicks(1 << 30) // park forever, holding the only slot
	})
	if p := tbl.allocproc(); p != nil {
		t.Fatalf("allocproc on a full table returned a slot, want nil")
	}
}
