package proc

// kill sets the killed flag on the slot with the given PID and, if it is
// currently Sleeping, promotes it to Runnable so it observes the flag at
// its next safe point instead of sleeping indefinitely. Asynchronous by
// design: the victim notices killed only when it next checks, not an
// immediate termination.
func (t *Table) kill(pid int) error {
	p := t.findByPID(pid)
	if p == nil {
		return ErrNoSuchProcess
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.killed = true
	if p.state == Sleeping {
		p.state = Runnable
	}
	t.log.Debugf("pid %d killed", pid)
	return nil
}
