package signal

import "testing"

func TestCatchableCountAndKill(t *testing.T) {
	if CatchableCount != 2 {
		t.Fatalf("CatchableCount = %d, want 2 (ALARM, MESSAGE)", CatchableCount)
	}
	if Kill != 2 {
		t.Fatalf("Kill = %d, want 2 (first uncatchable slot)", Kill)
	}
}

func TestQueueFIFOOrder(t *testing.T) {
	var q Queue
	for i := 0; i < 5; i++ {
		if err := q.Push(Value{Type: Message, SenderPID: 1, Payload: uint64(i)}); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() ok = false at i=%d", i)
		}
		if v.Payload != uint64(i) {
			t.Fatalf("Pop() payload = %d, want %d (FIFO order violated)", v.Payload, i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop() on empty queue returned ok=true")
	}
}

// Exercises the exact capacity boundary: a queue already at 511 pending
// accepts no more; the 511th push succeeds, the 512th does not.
func TestQueueEffectiveCapacityIs511(t *testing.T) {
	var q Queue
	accepted := 0
	for {
		if err := q.Push(Value{Type: Alarm, SenderPID: 1}); err != nil {
			break
		}
		accepted++
	}
	if accepted != MaxSignals-1 {
		t.Fatalf("accepted %d signals before ErrQueueFull, want %d", accepted, MaxSignals-1)
	}
	if err := q.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants at capacity: %v", err)
	}
}

func TestQueueInvariantsAfterWraparound(t *testing.T) {
	var q Queue
	for i := 0; i < MaxSignals/2; i++ {
		q.Push(Value{Payload: uint64(i)})
	}
	for i := 0; i < MaxSignals/4; i++ {
		q.Pop()
	}
	for i := 0; i < MaxSignals/2; i++ {
		if err := q.Push(Value{Payload: uint64(i)}); err != nil {
			t.Fatalf("Push after partial drain: %v", err)
		}
	}
	if err := q.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants after wraparound: %v", err)
	}
}

func TestSetHandlerRejectsUncatchable(t *testing.T) {
	s := NewState()
	if ok := s.SetHandler(Kill, Disposition{Kind: User}); ok {
		t.Fatalf("SetHandler(Kill, ...) = true, want false (Kill is uncatchable)")
	}
	if ok := s.SetHandler(Kind(CatchableCount+5), Disposition{Kind: User}); ok {
		t.Fatalf("SetHandler with out-of-range kind = true, want false")
	}
	if ok := s.SetHandler(Message, Disposition{Kind: Terminate}); !ok {
		t.Fatalf("SetHandler(Message, ...) = false, want true")
	}
	if s.Handlers[Message].Kind != Terminate {
		t.Fatalf("Handlers[Message].Kind = %v, want Terminate", s.Handlers[Message].Kind)
	}
}

func TestNewStateDefaultsAreIgnore(t *testing.T) {
	s := NewState()
	for i, d := range s.Handlers {
		if d.Kind != Ignore {
			t.Fatalf("Handlers[%d].Kind = %v, want Ignore by default", i, d.Kind)
		}
	}
}
