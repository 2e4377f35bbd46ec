package proc

import (
	"errors"

	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
)

// handleSignalsLocked drains p's pending signal queue, dispatching each
// one to its configured disposition, and reports whether p is no longer
// runnable (killed or became Zombie) as a result — in which case the
// scheduler must not swtch into it this pass. Caller holds p.lock, and
// p.state is Running. An empty queue skips the killed/Zombie check
// entirely: a process killed via the plain killed flag (as opposed to a
// queued KILL signal) is still resumed normally here, and only notices
// the flag at one of its own safe points (sleep, wait).
func (t *Table) handleSignalsLocked(c *CPU, p *Process) (skip bool) {
	if p.signaling.Queue.Len() == 0 {
		return false
	}
	for p.signaling.Queue.Len() > 0 {
		sig, ok := p.signaling.Queue.Pop()
		if !ok {
			break
		}

		var result int
		if int(sig.Type) < signal.CatchableCount {
			disp := p.signaling.Handlers[sig.Type]
			switch disp.Kind {
			case signal.Ignore:
				result = 0
			case signal.Terminate:
				result = -1
			case signal.User:
				if disp.Handler == nil {
					result = 0
					break
				}
				result = t.dispatchUserHandler(p, sig, disp.Handler)
			}
		} else {
			// Only KILL is presently uncatchable; any future addition to
			// the uncatchable range also forces termination by the same
			// convention.
			result = -1
		}

		if result != 0 {
			t.exitFromSignalLocked(p, result)
			return true
		}
		if p.killed || p.state == Zombie {
			return true
		}
	}
	return false
}

// sendSignal enqueues v, addressed to receiverPID, as sent by senderPID.
// If senderPID != receiverPID, it acquires the receiver's slot lock; if
// they're equal, it does not. This asymmetry is not a bug to be fixed
// here: a dispatched handler sending a signal to its own process (via
// handlerContext.SendSignal) already holds its own slot lock, so locking
// again would deadlock. A self-signal issued directly from ordinary user
// code (Syscalls.SendSignal) without holding the lock is the one case
// where this is a known, accepted race (see DESIGN.md).
func (t *Table) sendSignal(senderPID int, v signal.Value, receiverPID int) error {
	receiver := t.findByPID(receiverPID)
	if receiver == nil {
		return ErrNoSuchProcess
	}
	if senderPID != receiverPID {
		receiver.lock.Lock()
		defer receiver.lock.Unlock()
	}
	if err := receiver.signaling.Queue.Push(v); err != nil {
		return ErrSignalQueueFull
	}
	return nil
}

// alarmLocked implements the alarm() syscall's core: arm (or disarm, if
// seconds is 0) a one-shot alarm due in seconds*ticksPerSecond ticks from
// now, returning the number of ticks that were remaining on any
// previously armed alarm (0 if none was armed). Caller holds p.lock. The
// fire check itself lives in checkAlarmLocked (scheduler.go); see its
// comment for the preserved comparison direction.
func (t *Table) alarmLocked(p *Process, seconds uint64) uint64 {
	var remaining uint64
	if p.alarmSet {
		now := t.Uptime()
		if p.cyclesAtAlarm > now {
			remaining = p.cyclesAtAlarm - now
		}
	}
	if seconds == 0 {
		p.alarmSet = false
		return remaining
	}
	p.alarmSet = true
	p.cyclesAtAlarm = t.Uptime() + seconds*t.cfg.TicksPerSecond
	return remaining
}

// ticksPerSecond is the compiled-in tick rate (xv6's HZ), used as
// TableConfig.TicksPerSecond's zero-value default; internal/kernelconfig
// overrides it at boot from a config file.
const ticksPerSecond = 10

// exitFromSignalLocked terminates p as the result of an uncatchable
// signal or a handler that returned nonzero, with p.lock already held
// (handleSignalsLocked's caller holds it, unlike a normal syscall-driven
// exit). Since p's own lock is already held, it passes p itself as the
// slot reparentLocked/wakeup must not try to re-lock.
func (t *Table) exitFromSignalLocked(p *Process, status int) {
	if p == t.initProc {
		fatalf("proc: init exiting")
	}

	t.closeFilesAndCwd(p)

	t.waitLock.Lock()
	t.reparentLocked(p, p)
	t.wakeup(t.parentToken(p), p)
	p.xstate = status
	p.state = Zombie
	t.waitLock.Unlock()

	t.log.Warningf("pid %d terminated from signal dispatch with status %d", p.PID, status)
}

// ErrNoSuchProcess is returned when a PID-addressed operation (kill,
// send_signal) cannot find a live slot with that PID.
var ErrNoSuchProcess = errors.New("proc: no such process")

// ErrSignalQueueFull mirrors signal.ErrQueueFull at the proc-package API
// boundary.
var ErrSignalQueueFull = errors.New("proc: signal queue full")
