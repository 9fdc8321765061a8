package relay

import "testing"

func TestPeersAcquireLowestAvailable(t *testing.T) {
	p := NewPeers(3)

	id, ok := p.Acquire()
	if !ok || id != 1 {
		t.Fatalf("expected id=1 ok=true, got id=%d ok=%v", id, ok)
	}

	id, ok = p.Acquire()
	if !ok || id != 2 {
		t.Fatalf("expected id=2 ok=true, got id=%d ok=%v", id, ok)
	}

	p.Release(1)

	id, ok = p.Acquire()
	if !ok || id != 1 {
		t.Fatalf("expected reused id=1 ok=true, got id=%d ok=%v", id, ok)
	}
}

func TestPeersAcquireCapacityAndReuse(t *testing.T) {
	p := NewPeers(2)

	id1, ok := p.Acquire()
	if !ok || id1 != 1 {
		t.Fatalf("expected id=1 ok=true, got id=%d ok=%v", id1, ok)
	}

	id2, ok := p.Acquire()
	if !ok || id2 != 2 {
		t.Fatalf("expected id=2 ok=true, got id=%d ok=%v", id2, ok)
	}

	id3, ok := p.Acquire()
	if ok || id3 != 0 {
		t.Fatalf("expected id=0 ok=false when full, got id=%d ok=%v", id3, ok)
	}
	if p.Count() != 2 {
		t.Fatalf("expected count=2, got %d", p.Count())
	}

	p.Release(id1)

	id4, ok := p.Acquire()
	if !ok || id4 != 1 {
		t.Fatalf("expected reused id=1 ok=true, got id=%d ok=%v", id4, ok)
	}
}
