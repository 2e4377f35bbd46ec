package proc

import "errors"

// ErrNoChildren is returned by Wait when the calling process has no
// children (live or zombie) to wait for.
var ErrNoChildren = errors.New("proc: no children")

// wait blocks until one of p's children becomes a Zombie, reaps it (PID,
// exit status, and slot teardown), and returns that PID and status. It
// scans for a Zombie child first, and only sleeps if it found at least
// one live child and p itself has not been killed. Uses p's own identity
// as the sleep channel token, matching the parent/child rendezvous set up
// by exit/exitFromSignalLocked's wakeup(parentToken).
func (t *Table) wait(p *Process) (childPID int, status int, err error) {
	t.waitLock.Lock()
	for {
		haveChildren := false
		for _, c := range t.slots {
			if c.parent != p.index {
				continue
			}
			haveChildren = true
			c.lock.Lock()
			if c.state == Zombie {
				childPID = c.PID
				status = c.xstate
				t.freeprocLocked(c)
				c.parent = -1
				c.lock.Unlock()
				t.waitLock.Unlock()
				return childPID, status, nil
			}
			c.lock.Unlock()
		}
		if !haveChildren || p.Killed() {
			t.waitLock.Unlock()
			return -1, 0, ErrNoChildren
		}
		t.sleep(p, p, &t.waitLock)
	}
}
