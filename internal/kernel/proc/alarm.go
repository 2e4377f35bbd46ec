package proc

import (
	"errors"

	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
)

// alarm is the alarm() syscall's locking entry point: acquire p's slot
// lock (unlike alarmLocked's callers, which already hold it), then
// delegate to the shared arithmetic.
func (t *Table) alarm(p *Process, seconds uint64) uint64 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return t.alarmLocked(p, seconds)
}

// setSignalHandler installs disp as kind's disposition on p, matching
// set_signal_handler's "type >= CATCHABLE_COUNT returns 1" contract via
// signal.State.SetHandler's bounds check.
func (t *Table) setSignalHandler(p *Process, kind signal.Kind, disp signal.Disposition) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if ok := p.signaling.SetHandler(kind, disp); !ok {
		return ErrInvalidSignalKind
	}
	return nil
}

// ErrInvalidSignalKind is returned by SetSignalHandler for an uncatchable
// or out-of-range kind.
var ErrInvalidSignalKind = errors.New("proc: invalid or uncatchable signal kind")
