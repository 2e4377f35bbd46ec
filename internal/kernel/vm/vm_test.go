package vm

import "testing"

func TestNewProcessPageTableMapsFourFixedPages(t *testing.T) {
	tf := &Trapframe{}
	stack := AllocPage()
	pt, err := NewProcessPageTable(tf, stack)
	if err != nil {
		t.Fatalf("NewProcessPageTable: %v", err)
	}
	for _, va := range []uintptr{Trampoline, TrapframeVA, SignalRet, SignalStack} {
		if !pt.Mapped(va) {
			t.Errorf("va %#x not mapped", va)
		}
	}
}

func TestPageTableMapRejectsDuplicate(t *testing.T) {
	pt := Create()
	if err := pt.Map(Trampoline, permSupervisorRX); err != nil {
		t.Fatalf("first Map: %v", err)
	}
	if err := pt.Map(Trampoline, permSupervisorRX); err == nil {
		t.Fatalf("second Map at same address succeeded, want error")
	}
}

func TestGrowAndShrink(t *testing.T) {
	pt := Create()
	sz, err := pt.Grow(PageSize)
	if err != nil || sz != PageSize {
		t.Fatalf("Grow(+PageSize) = %d, %v", sz, err)
	}
	sz, err = pt.Grow(-PageSize)
	if err != nil || sz != 0 {
		t.Fatalf("Grow(-PageSize) = %d, %v", sz, err)
	}
	if _, err := pt.Grow(-PageSize); err == nil {
		t.Fatalf("Grow below zero succeeded, want error")
	}
}

func TestRefCountedFileDupAndClose(t *testing.T) {
	f := NewRefCountedFile()
	g := f.Dup().(*RefCountedFile)
	if f.Refs() != 2 {
		t.Fatalf("Refs() after Dup = %d, want 2", f.Refs())
	}
	g.Close()
	if f.Refs() != 1 {
		t.Fatalf("Refs() after Close = %d, want 1", f.Refs())
	}
}
