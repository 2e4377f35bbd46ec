package proc

import "github.com/rhit-seilerar/xv6go/internal/kernel/signal"

// Syscalls is the per-process handle a Program runs with: every
// operation a real user program would reach via a trap into the kernel,
// bound to the process executing it. See internal/kernel/syscall for the
// numbered dispatch table a real trap handler would use to reach these.
type Syscalls struct {
	t *Table
	p *Process
}

func (p *Process) syscalls() *Syscalls {
	return &Syscalls{t: p.table, p: p}
}

// PID returns the calling process's own PID.
func (sc *Syscalls) PID() int { return sc.p.PID }

// Fork creates a child process running childProgram. See (*Table).fork
// for why the child's continuation must be supplied explicitly.
func (sc *Syscalls) Fork(childProgram Program) (int, error) {
	return sc.t.fork(sc.p, childProgram)
}

// Exit terminates the calling process with the given status. It never
// returns.
func (sc *Syscalls) Exit(status int) {
	sc.t.exit(sc.p, status)
}

// Wait blocks until a child becomes a zombie, reaps it, and returns its
// PID and exit status.
func (sc *Syscalls) Wait() (pid int, status int, err error) {
	return sc.t.wait(sc.p)
}

// Kill sets the killed flag on the process with the given PID.
func (sc *Syscalls) Kill(pid int) error {
	return sc.t.kill(pid)
}

// SendSignal enqueues v on the process with the given PID, as sent by the
// caller.
func (sc *Syscalls) SendSignal(v signal.Value, receiverPID int) error {
	return sc.t.sendSignal(sc.p.PID, v, receiverPID)
}

// SetSignalHandler installs disp as kind's disposition for the calling
// process.
func (sc *Syscalls) SetSignalHandler(kind signal.Kind, disp signal.Disposition) error {
	return sc.t.setSignalHandler(sc.p, kind, disp)
}

// Alarm arms (seconds > 0) or disarms (seconds == 0) a one-shot alarm for
// the calling process, returning any previously remaining ticks.
func (sc *Syscalls) Alarm(seconds uint64) uint64 {
	return sc.t.alarm(sc.p, seconds)
}

// Yield voluntarily gives up the CPU, matching the yield() syscall.
func (sc *Syscalls) Yield() {
	sc.p.lock.Lock()
	sc.p.state = Runnable
	sc.p.sched()
	sc.p.lock.Unlock()
}

// SleepTicks blocks the calling process for at least n ticks, waking
// early only if it is killed. Built on the sleep/wakeup primitive and the
// tick driver's wakeup(&ticks) rather than busy-waiting on Uptime, so a
// kill() delivered mid-sleep is observed within one tick, not after the
// full duration.
func (sc *Syscalls) SleepTicks(n uint64) {
	target := sc.t.Uptime() + n
	for sc.t.Uptime() < target {
		if sc.p.Killed() {
			return
		}
		sc.t.sleep(sc.p, sc.t.ticksToken, &tickSleepLock{t: sc.t})
	}
}

// Uptime returns the number of ticks elapsed since boot.
func (sc *Syscalls) Uptime() uint64 { return sc.t.Uptime() }

// Sbrk grows or shrinks the calling process's user memory by n bytes,
// returning the new size.
func (sc *Syscalls) Sbrk(n int) (int, error) {
	if err := sc.t.growproc(sc.p, n); err != nil {
		return 0, err
	}
	return int(sc.p.pagetable.Size()), nil
}

// tickSleepLock adapts the tick-rendezvous wait to sleep's sync.Locker
// parameter. There is no real lock protecting the tick counter beyond the
// atomic it's already stored in, so Lock/Unlock are no-ops; sleep still
// needs something satisfying sync.Locker to release before parking and
// reacquire after waking.
type tickSleepLock struct{ t *Table }

func (tickSleepLock) Lock()   {}
func (tickSleepLock) Unlock() {}
