package proc

import (
	"context"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
	"github.com/rhit-seilerar/xv6go/internal/kernel/vm"
)

// CPU is one logical scheduler worker. Real xv6 has one of these per hart,
// each running the scheduler() loop forever; here each is a goroutine
// managed by an errgroup, grounded in gVisor's subprocess pool lifecycle
// (pkg/sentry/platform/systrap) where a fixed worker pool each pulls work
// off a shared queue rather than being pinned to a single traced thread.
type CPU struct {
	ID   int
	Proc *Process
}

// RunScheduler starts ncpu scheduler goroutines plus one tick-driver
// goroutine, and blocks until ctx is canceled or any of them returns an
// error. The scheduler loop itself never returns on its own; only
// context cancellation lets tests shut it down cleanly.
func (t *Table) RunScheduler(ctx context.Context, ncpu int, tickPeriod time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < ncpu; i++ {
		c := &CPU{ID: i}
		g.Go(func() error {
			return t.schedulerLoop(ctx, c)
		})
	}
	g.Go(func() error {
		return t.tickLoop(ctx, tickPeriod)
	})
	return g.Wait()
}

// schedulerLoop is the scheduling core: for each slot, acquire its
// lock, and if Runnable, run checkAlarm and handleSignals and then hand
// off to the process's goroutine (the swtch-equivalent), blocking until
// it yields back.
func (t *Table) schedulerLoop(ctx context.Context, c *CPU) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ran := false
		for _, p := range t.slots {
			p.lock.Lock()
			if p.state == Runnable {
				ran = true
				p.state = Running
				c.Proc = p
				t.checkAlarmLocked(p)
				if !t.handleSignalsLocked(c, p) {
					p.resumeCh <- c
					<-p.yieldCh
				}
				c.Proc = nil
			}
			p.lock.Unlock()
		}
		if !ran {
			idleHint()
		}
	}
}

// idleHint yields the OS thread briefly when no slot was runnable,
// standing in for xv6's WFI instruction. Grounded on gVisor's pattern of
// using golang.org/x/sys/unix directly for low-level timing primitives
// rather than time.Sleep, so the idle wait is a real syscall rather than
// a pure-runtime sleep.
func idleHint() {
	ts := unix.NsecToTimespec((time.Millisecond).Nanoseconds())
	unix.Nanosleep(&ts, nil)
}

// tickLoop advances the tick counter on a fixed period, standing in for
// the timer interrupt's clockintr.
func (t *Table) tickLoop(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.advanceTick()
		}
	}
}

// checkAlarmLocked implements the scheduler's per-pass alarm check: if
// an alarm is armed, it enqueues an ALARM signal addressed to the
// process itself. Caller holds p.lock, so the signal is pushed straight
// onto p's queue rather than going through sendSignal.
//
// The comparison is cyclesAtAlarm >= the current tick, not the other
// way around. Since cyclesAtAlarm is always set to a tick in the
// future at arm time, that condition is already true on the very next
// scheduler pass after Alarm is called, so in practice an alarm fires
// almost immediately rather than after the requested delay has
// actually elapsed. That is a faithfully preserved quirk of this
// comparison's direction, not something this implementation corrects.
func (t *Table) checkAlarmLocked(p *Process) {
	if !p.alarmSet {
		return
	}
	if p.cyclesAtAlarm >= t.Uptime() {
		p.alarmSet = false
		p.signaling.Queue.Push(signal.Value{Type: signal.Alarm, SenderPID: p.PID})
	}
}

// runLoop is a process slot's goroutine body. Its first receive from
// resumeCh corresponds to forkret: the scheduler has just acquired and is
// holding p.lock for this dispatch, and this is the first opportunity the
// process's own code has had to run, so it releases the lock immediately,
// exactly as forkret does, before running its Program.
//
// init may not exit, so when init's Program returns its slot goes back to
// Sleeping for good instead (re-sleeping whenever something wakes it);
// any other process exits with status 0.
func (p *Process) runLoop() {
	<-p.resumeCh
	p.lock.Unlock()

	if p.program != nil {
		p.program(p.syscalls())
	}
	if p == p.table.initProc {
		for {
			p.lock.Lock()
			p.chanTok = p
			p.state = Sleeping
			p.sched()
			p.chanTok = nil
			p.lock.Unlock()
		}
	}
	if p.State() != Zombie {
		p.table.exit(p, 0)
	}
	// p.table.exit never returns: it parks this goroutine forever inside
	// sched(), since a Zombie slot is never dispatched again.
}

// sched hands control back to the scheduler and blocks until this process
// is dispatched again. Precondition: p.lock held by the caller (Sleep,
// Yield, or exit). It does not touch the lock itself: swtch alone never
// manipulates locks.
func (p *Process) sched() *CPU {
	p.yieldCh <- struct{}{}
	return <-p.resumeCh
}

// dispatchUserHandler rewrites the victim's trapframe to describe a call
// into the registered handler and invokes it directly. A real kernel
// switches back into the process so it executes the handler in user mode
// at the rewritten Epc; since HandlerFunc is an ordinary Go function
// rather than code at a virtual address, this calls it directly while
// still recording the would-be trapframe effects, so tests can assert on
// them.
func (t *Table) dispatchUserHandler(p *Process, sig signal.Value, h signal.HandlerFunc) int {
	tf := p.trapframe
	tf.Epc = uint64(reflect.ValueOf(h).Pointer())
	tf.Ra = 0 // would point at the signal-return stub; not a real return address here
	tf.Sp = 0 // top of the signal stack; not a real stack pointer here
	tf.A0 = (uint64(sig.SenderPID) << 32) | uint64(sig.Type)
	tf.A1 = sig.Payload
	*p.signalStack = vm.Page{}

	ctx := &handlerContext{table: t, proc: p}
	return h(ctx, sig)
}

// handlerContext is the signal.Context handed to a dispatched handler.
// Every method here runs while the caller (handleSignalsLocked) already
// holds p.lock, so each one must avoid re-locking it.
type handlerContext struct {
	table *Table
	proc  *Process
}

func (c *handlerContext) PID() int { return c.proc.PID }

func (c *handlerContext) Alarm(seconds uint64) uint64 {
	return c.table.alarmLocked(c.proc, seconds)
}

func (c *handlerContext) SendSignal(v signal.Value, receiverPID int) error {
	return c.table.sendSignal(c.proc.PID, v, receiverPID)
}
