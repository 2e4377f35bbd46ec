package proc

import (
	"errors"

	"github.com/rhit-seilerar/xv6go/internal/kernel/vm"
)

// fork creates a new process as a near-copy of p: same memory size, file
// table (each open file's refcount bumped, not duplicated), and current
// working directory, parented under p. childProgram stands in for "the
// same instruction stream continuing in the child's address space" (real
// fork duplicates memory so both parent and child resume at the
// instruction after the syscall); since a Go function cannot be resumed
// from an arbitrary mid-point the way a duplicated stack can, the
// caller supplies the child's continuation explicitly. See DESIGN.md for
// why this is the one syscall whose Go-native signature necessarily
// differs from its C original.
//
// On success, returns the child's PID and writes that PID into p's own
// trapframe.A0 and 0 into the child's trapframe.A0, matching the
// parent-sees-child-pid / child-sees-zero contract of the real syscall,
// even though neither trapframe actually drives control flow in this
// simulation.
func (t *Table) fork(p *Process, childProgram Program) (childPID int, err error) {
	np := t.allocproc()
	if np == nil {
		t.log.Warningf("fork from pid %d: no free process slot", p.PID)
		return -1, ErrNoFreeSlot
	}

	np.lock.Lock()
	if _, e := np.pagetable.Grow(int(vm.Copy(p.pagetable))); e != nil {
		t.freeprocLocked(np)
		np.lock.Unlock()
		t.log.Warningf("fork from pid %d: %v", p.PID, e)
		return -1, e
	}

	*np.trapframe = *p.trapframe
	np.trapframe.A0 = 0

	for i, f := range p.files {
		if f != nil {
			np.files[i] = f.Dup()
		}
	}
	np.cwd = p.cwd
	np.name = p.name
	np.program = childProgram
	np.lock.Unlock()

	t.waitLock.Lock()
	np.parent = p.index
	t.waitLock.Unlock()

	np.lock.Lock()
	np.state = Runnable
	childPID = np.PID
	np.lock.Unlock()

	go np.runLoop()

	p.lock.Lock()
	p.trapframe.A0 = uint64(childPID)
	p.lock.Unlock()

	return childPID, nil
}

// ErrNoFreeSlot is returned by fork when the process table has no Unused
// slot available, matching allocproc's exhaustion case. (Boot panics in
// that case instead.)
var ErrNoFreeSlot = errors.New("proc: no free process slot")
