// Package vm stands in for a kernel's physical-page allocator and
// per-process page table: page allocation/freeing and the fixed
// trampoline/trapframe/signal-stack mappings every process needs. The
// process table (internal/kernel/proc) owns references to these types and
// must be able to allocate, map, and free them correctly to implement
// process creation, teardown, fork, and memory growth, so a minimal but
// real implementation lives here rather than being left unimplemented.
//
// Fixed virtual addresses and page size are kept as named constants for
// documentation purposes even though this package never touches real
// hardware page tables; a genuine RISC-V backend would replace Create/
// Map/Unmap's bodies without changing the proc package's call sites.
package vm

import "fmt"

// PageSize matches xv6's RISC-V page size; mappings below are always
// exactly one page.
const PageSize = 4096

// Fixed virtual addresses, one page apart, highest first: the trampoline,
// then the trapframe, then the signal-return stub, then the signal stack.
// Addresses are illustrative, not load-bearing in a hosted Go process,
// but are exercised by PageTable's mapping checks.
const (
	maxVA        = 1 << 38
	Trampoline   = maxVA - PageSize
	TrapframeVA  = Trampoline - PageSize
	SignalRet    = TrapframeVA - PageSize
	SignalStack  = SignalRet - PageSize
)

// PermSet is the access permission of one mapping.
type PermSet struct {
	Read, Write, Exec, User bool
}

var (
	permSupervisorRX = PermSet{Read: true, Exec: true}
	permSupervisorRW = PermSet{Read: true, Write: true}
	permUserRX       = PermSet{Read: true, Exec: true, User: true}
	permUserRW       = PermSet{Read: true, Write: true, User: true}
)

// mapping is one entry of a PageTable.
type mapping struct {
	va    uintptr
	perms PermSet
}

// PageTable is a user address space's root page table, reduced to the set
// of page mappings a process actually needs here: the four fixed pages
// plus whatever user memory growproc/fork have allocated.
// Real address translation is not modeled; Map/Unmap only track which
// pages are present, which is everything allocproc/freeproc/fork/growproc
// need to exercise correctly.
type PageTable struct {
	mappings map[uintptr]mapping
	userSize uintptr
}

// Create returns an empty page table, mirroring uvmcreate.
func Create() *PageTable {
	return &PageTable{mappings: make(map[uintptr]mapping)}
}

// Map installs a single-page mapping at va with the given permissions.
// It returns an error if va is already mapped, mirroring mappages'
// failure mode when a PTE already exists.
func (pt *PageTable) Map(va uintptr, perms PermSet) error {
	if _, ok := pt.mappings[va]; ok {
		return fmt.Errorf("vm: address %#x already mapped", va)
	}
	pt.mappings[va] = mapping{va: va, perms: perms}
	return nil
}

// Unmap removes the mapping at va, if present. Unmapping an absent page is
// a no-op, matching uvmunmap's tolerance for partial teardown during
// allocproc's failure-rollback paths.
func (pt *PageTable) Unmap(va uintptr) {
	delete(pt.mappings, va)
}

// Mapped reports whether va currently has a mapping.
func (pt *PageTable) Mapped(va uintptr) bool {
	_, ok := pt.mappings[va]
	return ok
}

// NewProcessPageTable builds the four fixed mappings every process needs
// (trampoline, trapframe, signal-return stub, signal stack): any failure
// unmaps everything already mapped and returns an error, so the caller
// never has to reason about a partially built table.
func NewProcessPageTable(trapframe *Trapframe, signalStack *Page) (*PageTable, error) {
	pt := Create()
	type step struct {
		va    uintptr
		perms PermSet
	}
	steps := []step{
		{Trampoline, permSupervisorRX},
		{TrapframeVA, permSupervisorRW},
		{SignalRet, permUserRX},
		{SignalStack, permUserRW},
	}
	for i, s := range steps {
		if err := pt.Map(s.va, s.perms); err != nil {
			for j := 0; j < i; j++ {
				pt.Unmap(steps[j].va)
			}
			return nil, err
		}
	}
	return pt, nil
}

// Free releases a page table. Real xv6 walks and frees every backing
// physical page (uvmfree); this stand-in's pages are ordinary Go garbage,
// so Free only needs to drop the table's own references.
func (pt *PageTable) Free() {
	pt.mappings = nil
}

// Grow implements growproc's "grow or shrink user memory by n bytes,"
// delegating to this stand-in's bookkeeping instead of real uvmalloc/
// uvmdealloc. A shrink larger than the current size is rejected with an
// error and leaves the size unchanged.
func (pt *PageTable) Grow(n int) (newSize uintptr, err error) {
	if n > 0 {
		pt.userSize += uintptr(n)
		return pt.userSize, nil
	}
	if uintptr(-n) > pt.userSize {
		return 0, fmt.Errorf("vm: shrink %d exceeds current size %d", -n, pt.userSize)
	}
	pt.userSize -= uintptr(-n)
	return pt.userSize, nil
}

// Size reports the current user address space size in bytes.
func (pt *PageTable) Size() uintptr { return pt.userSize }

// Copy duplicates src's user memory into a freshly built dst, as fork's
// page-table duplication does. Since no real page contents are modeled,
// this only copies the size bookkeeping; fork's round-trip property
// (parent a0 == child pid, child a0 == 0) is exercised directly on the
// trapframe instead, since that is the only register state fork actually
// threads through this package.
func Copy(src *PageTable) (userSize uintptr) {
	return src.userSize
}

// Page is a single physical page, used for the signal stack (the
// trapframe is modeled separately as a Trapframe struct). Zeroed on
// allocation.
type Page [PageSize]byte

// AllocPage returns a zeroed page, for the signal stack a new process
// needs.
func AllocPage() *Page {
	return &Page{}
}

// Trapframe holds the saved user registers this kernel actually needs:
// the program counter, return address, stack pointer, global pointer, and
// the two argument registers used to pass signal metadata into a handler
// (a0 = (senderPID<<32)|type, a1 = payload). A real RISC-V trapframe saves
// all 31 general-purpose registers; only the ones this subsystem reads or
// writes are modeled.
type Trapframe struct {
	Epc uint64
	Ra  uint64
	Sp  uint64
	Gp  uint64
	A0  uint64
	A1  uint64
}

// FileRef stands in for an open file descriptor's referent. A real file
// subsystem is out of scope here, but fork/exit must duplicate and
// release references to it, so a minimal reference-counted stub is
// provided to exercise that bookkeeping.
type FileRef interface {
	Dup() FileRef
	Close()
}

// RefCountedFile is a trivial FileRef backed by a shared counter, enough
// to prove fork increments and exit decrements it correctly.
type RefCountedFile struct {
	refs *int
}

// NewRefCountedFile returns a fresh file reference with one outstanding ref.
func NewRefCountedFile() *RefCountedFile {
	n := 1
	return &RefCountedFile{refs: &n}
}

// Dup implements FileRef.
func (f *RefCountedFile) Dup() FileRef {
	*f.refs++
	return &RefCountedFile{refs: f.refs}
}

// Close implements FileRef.
func (f *RefCountedFile) Close() {
	*f.refs--
}

// Refs reports the current reference count, for tests only.
func (f *RefCountedFile) Refs() int { return *f.refs }
