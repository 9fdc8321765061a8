package relay

import "sync"

// Peers hands out peer numbers and enforces the connection limit.
type Peers struct {
	mu   sync.Mutex
	max  int
	used map[int]struct{}
}

// NewPeers creates an allocator for at most max concurrent peers.
func NewPeers(max int) *Peers {
	return &Peers{max: max, used: make(map[int]struct{})}
}

// Acquire allocates the lowest free peer number. It returns 0 and false
// when the relay is full.
func (p *Peers) Acquire() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.used) >= p.max {
		return 0, false
	}
	for id := 1; ; id++ {
		if _, taken := p.used[id]; !taken {
			p.used[id] = struct{}{}
			return id, true
		}
	}
}

// Release frees a peer number.
func (p *Peers) Release(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.used, id)
}

// Count returns the number of allocated peers.
func (p *Peers) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.used)
}
