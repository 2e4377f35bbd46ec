package proc

// closeFilesAndCwd releases p's open files and working directory. No
// real filesystem backs this; it only needs to drop references so
// fork/exit reference-counting is exercisable.
func (t *Table) closeFilesAndCwd(p *Process) {
	for i, f := range p.files {
		if f != nil {
			f.Close()
			p.files[i] = nil
		}
	}
	p.cwd = ""
}

// reparentLocked hands every child of p to the init process. Caller
// holds t.waitLock. skip is passed straight through to wakeup: the
// exiting process's own slot if its lock is already held by the
// caller, nil otherwise.
func (t *Table) reparentLocked(p *Process, skip *Process) {
	for _, c := range t.slots {
		if c.parent == p.index {
			c.parent = t.initProc.index
			t.wakeup(t.parentToken(c), skip)
		}
	}
}

// parentToken is the rendezvous token a child's exit wakes and a parent's
// wait sleeps on: the parent slot's own identity. Must be read with
// t.waitLock held (p.parent is guarded by waitLock, not p.lock).
func (t *Table) parentToken(p *Process) Channel {
	if p.parent < 0 {
		return nil
	}
	return t.slots[p.parent]
}

// exit implements a normal, syscall-driven process exit: close files,
// release cwd, reparent any children to init, wake the parent, mark this
// slot Zombie, and hand control back to the scheduler forever. Unlike
// exitFromSignalLocked, the caller does not hold p.lock when this is
// invoked (a plain syscall does not pre-acquire it), so exit acquires
// it itself partway through, after the reparent scan and before marking
// the slot Zombie, and so passes nil (no already-locked slot to skip)
// to reparentLocked/wakeup.
func (t *Table) exit(p *Process, status int) {
	if p == t.initProc {
		fatalf("proc: init exiting")
	}

	t.closeFilesAndCwd(p)

	t.waitLock.Lock()
	t.reparentLocked(p, nil)
	t.wakeup(t.parentToken(p), nil)

	p.lock.Lock()
	p.xstate = status
	p.state = Zombie
	t.waitLock.Unlock()

	t.log.Debugf("pid %d exited with status %d", p.PID, status)

	p.sched()
	fatalf("proc: zombie process resumed")
}
