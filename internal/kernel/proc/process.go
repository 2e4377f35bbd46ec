// Package proc implements the process table, scheduler, sleep/wakeup
// rendezvous, and signal dispatch of a small xv6-lineage teaching kernel.
// It is grounded on gVisor's systrap subprocess/thread request-channel
// pattern: one goroutine per traced execution context, synchronized by
// request/response channels rather than shared mutable state.
//
// Since a literal register-level context switch is not representable in
// a hosted Go process, each process slot owns a goroutine that plays the
// role of the process's saved context: parking on a channel receive is
// this model's switch-away, and a channel send is switch-into. The
// slot's own sync.Mutex is locked and unlocked by whichever side (the
// scheduler goroutine or the process's own goroutine) would hold the
// equivalent kernel lock at that point, so the lock discipline below
// follows the classic acquire/release call sites of a sleeping-lock
// kernel rather than reinventing them.
package proc

import (
	"fmt"
	"sync"

	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
	"github.com/rhit-seilerar/xv6go/internal/kernel/vm"
)

// NOFILE bounds the per-process open file table, matching xv6's param.h.
const NOFILE = 16

// State is one of a process slot's six lifecycle states.
type State int

const (
	Unused State = iota
	Used
	Sleeping
	Runnable
	Running
	Zombie
)

func (s State) String() string {
	switch s {
	case Unused:
		return "unused"
	case Used:
		return "used"
	case Sleeping:
		return "sleep "
	case Runnable:
		return "runble"
	case Running:
		return "run   "
	case Zombie:
		return "zombie"
	default:
		return "???"
	}
}

// Channel is the opaque rendezvous token used by Sleep/Wakeup. By
// convention it is the identity of whatever the sleeper is waiting on: a
// parent process (wait/exit) or a table-owned tick token (SleepTicks).
type Channel = any

// Program is the body of a simulated user process. A real kernel loads
// and executes an ELF binary via exec(), which this kernel leaves out of
// scope; Program stands in for "the user program" so that
// fork/exit/wait/signal semantics can be exercised without an ELF loader.
// It receives a Syscalls handle bound to the process that is executing it.
type Program func(*Syscalls)

// Process is one process-table slot. Most fields are protected by Lock;
// Parent is protected by the table's waitLock instead (never by Lock).
type Process struct {
	table *Table
	index int

	lock sync.Mutex

	PID     int
	state   State
	parent  int // table index, or -1; guarded by table.waitLock, not lock
	chanTok Channel
	killed  bool
	xstate  int

	pagetable   *vm.PageTable
	trapframe   *vm.Trapframe
	signalStack *vm.Page
	signaling   signal.State

	files [NOFILE]vm.FileRef
	cwd   string

	name string

	alarmSet      bool
	cyclesAtAlarm uint64

	program  Program
	resumeCh chan *CPU
	yieldCh  chan struct{}
}

// State reports the process's current lifecycle state under lock.
func (p *Process) State() State {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.state
}

// Killed reports whether the killed flag has been set. Mirrors killed(p).
func (p *Process) Killed() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.killed
}

// Name returns the process's debug name.
func (p *Process) Name() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.name
}

// Trapframe returns a copy of the process's saved trapframe, for tests
// that assert on fork/signal-dispatch register effects (fork's round-trip
// property: parent a0 == child pid, child a0 == 0).
func (p *Process) Trapframe() vm.Trapframe {
	p.lock.Lock()
	defer p.lock.Unlock()
	return *p.trapframe
}

// fatalf reports a kernel invariant violation: a condition that "should
// never happen," unrecoverable by design, since it indicates a kernel bug
// rather than a user error.
func fatalf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
