package syscall

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/rhit-seilerar/xv6go/internal/kernel/proc"
	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
)

const testTickPeriod = time.Millisecond

func testContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}

// TestDispatchTable drives a handful of syscalls through Dispatch rather
// than the Syscalls methods directly (Fork, which needs a child Program,
// is called directly to create the child that Wait reaps), comparing each
// Result against a fixed expected value. Results carry an error value, so
// cmpopts.EquateErrors is used in place of a plain cmp.Diff on err.
func TestDispatchTable(t *testing.T) {
	tbl := proc.NewTable(proc.TableConfig{NPROC: 8}, nil)
	seen := make(chan Result, 8)

	tbl.Boot(func(sc *proc.Syscalls) {
		seen <- Dispatch(sc, GetPID, Args{})

		childPID, err := sc.Fork(func(csc *proc.Syscalls) {
			csc.Exit(3)
		})
		seen <- Result{Int1: childPID, Err: err}

		seen <- Dispatch(sc, Wait, Args{})

		seen <- Dispatch(sc, SetSignalHandler, Args{
			Kind: signal.Message,
			Disp: signal.Disposition{Kind: signal.Ignore},
		})

		seen <- Dispatch(sc, Alarm, Args{UInt1: 0})
	})

	ctx, cancel := testContext(t)
	defer cancel()
	go tbl.RunScheduler(ctx, 2, testTickPeriod)

	want := []Result{
		{Int1: 1},
		{Int1: 2},
		{Int1: 2, Int2: 3},
		{},
		{},
	}
	for i, w := range want {
		got := <-seen
		if diff := cmp.Diff(w, got, cmpopts.EquateErrors()); diff != "" {
			t.Fatalf("result %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestDispatchUnimplementedSyscall(t *testing.T) {
	tbl := proc.NewTable(proc.TableConfig{NPROC: 2}, nil)
	done := make(chan Result, 1)

	tbl.Boot(func(sc *proc.Syscalls) {
		done <- Dispatch(sc, Open, Args{})
	})

	ctx, cancel := testContext(t)
	defer cancel()
	go tbl.RunScheduler(ctx, 1, testTickPeriod)

	got := <-done
	if got.Err != ErrUnimplemented {
		t.Fatalf("Dispatch(Open, ...).Err = %v, want ErrUnimplemented", got.Err)
	}
}
