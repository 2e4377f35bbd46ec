package syscall

import (
	"errors"

	"github.com/rhit-seilerar/xv6go/internal/kernel/proc"
	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
)

// ErrUnimplemented is returned by Dispatch for a reserved-but-unsupported
// syscall number (the file and process-image syscalls this kernel leaves
// out of scope).
var ErrUnimplemented = errors.New("syscall: unimplemented")

// Args bundles the arguments a dispatched syscall might need. Only the
// fields relevant to Number are read; it is simpler than a variadic
// []any for the fixed, small set of syscalls this kernel implements, and
// mirrors how a trap handler pulls fixed argument registers rather than
// building a generic argument vector.
type Args struct {
	Int1    int
	Int2    int
	UInt1   uint64
	PID     int
	Signal  signal.Value
	Kind    signal.Kind
	Disp    signal.Disposition
	Program proc.Program
}

// Result bundles a dispatched syscall's return values.
type Result struct {
	Int1 int
	Int2 int
	UInt uint64
	Err  error
}

// Dispatch invokes the syscall numbered n on sc with args, the Go
// analogue of a trap handler indexing into a syscall function-pointer
// table. Most Program bodies call the Syscalls methods directly rather
// than going through Dispatch (cmd/xv6sim's scenario runner included);
// this exists so a syscall can be invoked generically by number.
func Dispatch(sc *proc.Syscalls, n Number, args Args) Result {
	switch n {
	case Fork:
		pid, err := sc.Fork(args.Program)
		return Result{Int1: pid, Err: err}
	case Exit:
		sc.Exit(args.Int1)
		return Result{}
	case Wait:
		pid, status, err := sc.Wait()
		return Result{Int1: pid, Int2: status, Err: err}
	case Kill:
		return Result{Err: sc.Kill(args.PID)}
	case GetPID:
		return Result{Int1: sc.PID()}
	case Sbrk:
		sz, err := sc.Sbrk(args.Int1)
		return Result{Int1: sz, Err: err}
	case Sleep:
		sc.SleepTicks(args.UInt1)
		return Result{}
	case Uptime:
		return Result{UInt: sc.Uptime()}
	case Yield:
		sc.Yield()
		return Result{}
	case SendSignal:
		return Result{Err: sc.SendSignal(args.Signal, args.PID)}
	case SetSignalHandler:
		return Result{Err: sc.SetSignalHandler(args.Kind, args.Disp)}
	case Alarm:
		return Result{UInt: sc.Alarm(args.UInt1)}
	default:
		return Result{Err: ErrUnimplemented}
	}
}
