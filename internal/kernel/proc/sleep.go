package proc

import "sync"

// sleep is the sleep/wakeup rendezvous primitive: atomically record
// chanTok and release lk, then block until some future wakeup(chanTok)
// call (or a spurious resume) lets the scheduler promote this slot back
// to Runnable and dispatch it again.
func (t *Table) sleep(p *Process, chanTok Channel, lk sync.Locker) {
	p.lock.Lock()
	lk.Unlock()
	p.chanTok = chanTok
	p.state = Sleeping
	p.sched()
	p.chanTok = nil
	p.lock.Unlock()
	lk.Lock()
}

// wakeup promotes every Sleeping slot whose chanTok equals tok to
// Runnable. Scans the whole table rather than maintaining per-channel
// wait lists, trading a linear scan for never needing to register or
// unregister a waiter.
//
// skip is the caller's own slot if the caller already holds its lock
// (nil otherwise): wakeup must never call Lock on a slot the caller is
// already holding, since sync.Mutex has no owner affinity and a second
// Lock from the same goroutine blocks forever. skip's fields are read
// and written directly, without relocking, since the caller's hold on
// its lock already makes that safe.
func (t *Table) wakeup(tok Channel, skip *Process) {
	for _, p := range t.slots {
		if p == nil {
			continue
		}
		if p == skip {
			if p.state == Sleeping && p.chanTok == tok {
				p.state = Runnable
			}
			continue
		}
		p.lock.Lock()
		if p.state == Sleeping && p.chanTok == tok {
			p.state = Runnable
		}
		p.lock.Unlock()
	}
}
