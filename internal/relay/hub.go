package relay

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Peer is one connected relay client.
type Peer struct {
	ID   int
	User string
	Room string // "" until the peer joins a room
	Out  chan Frame
}

// Hub routes frames between the peers of a room.
type Hub struct {
	mu     sync.RWMutex
	peers  map[int]*Peer
	docs   map[string]map[string]string // room -> doc -> latest payload
	outbox int
	log    *slog.Logger
}

// NewHub creates a hub whose peers buffer up to outbox frames each.
func NewHub(outbox int, log *slog.Logger) *Hub {
	if outbox <= 0 {
		outbox = 32
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		peers:  make(map[int]*Peer),
		docs:   make(map[string]map[string]string),
		outbox: outbox,
		log:    log,
	}
}

// Register adds a peer that is not yet in any room.
func (h *Hub) Register(id int) *Peer {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := &Peer{ID: id, Out: make(chan Frame, h.outbox)}
	h.peers[id] = p
	peersConnected.Inc()
	return p
}

// Unregister removes a peer, announcing its departure to its room. The
// peer's outbox is not closed: a concurrent fan-out may still hold it.
func (h *Hub) Unregister(id int) {
	h.Leave(id)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[id]; ok {
		delete(h.peers, id)
		peersConnected.Dec()
	}
}

// Join moves a peer into room under the given display name. The peer is
// sent the latest payload of every document in the room, and the room is
// sent its new member list.
func (h *Hub) Join(id int, room, user string) error {
	if room == "" {
		return fmt.Errorf("join: room is required")
	}
	h.Leave(id)

	h.mu.Lock()
	p, ok := h.peers[id]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("join: peer %d not found", id)
	}
	p.Room = room
	p.User = user

	syncs := make([]Frame, 0, len(h.docs[room]))
	for doc, payload := range h.docs[room] {
		syncs = append(syncs, Frame{Type: TypeSync, Room: room, Doc: doc, Payload: payload})
	}
	h.mu.Unlock()

	sort.Slice(syncs, func(i, j int) bool { return syncs[i].Doc < syncs[j].Doc })
	for _, f := range syncs {
		h.deliver(p, f)
	}
	h.announce(room)
	return nil
}

// Leave takes a peer out of its room, if it is in one.
func (h *Hub) Leave(id int) {
	h.mu.Lock()
	p, ok := h.peers[id]
	if !ok || p.Room == "" {
		h.mu.Unlock()
		return
	}
	room := p.Room
	p.Room = ""
	h.mu.Unlock()

	h.announce(room)
}

// Publish records payload as the latest state of doc in the sender's room
// and fans it out to every other peer in that room.
func (h *Hub) Publish(id int, doc, payload string) error {
	if doc == "" {
		return fmt.Errorf("publish: doc is required")
	}

	h.mu.Lock()
	p, ok := h.peers[id]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("publish: peer %d not found", id)
	}
	if p.Room == "" {
		h.mu.Unlock()
		return fmt.Errorf("publish: peer %d has not joined a room", id)
	}
	room := p.Room
	if h.docs[room] == nil {
		h.docs[room] = make(map[string]string)
	}
	h.docs[room][doc] = payload
	targets := h.roomPeers(room, id)
	user := p.User
	h.mu.Unlock()

	f := Frame{Type: TypeUpdate, Room: room, Doc: doc, User: user, Peer: id, Payload: payload}
	dropped := 0
	for _, t := range targets {
		if !h.deliver(t, f) {
			dropped++
		}
	}
	if dropped > 0 {
		h.log.Warn("relay dropped updates for slow peers", "room", room, "doc", doc, "dropped", dropped)
	}
	return nil
}

// Send queues a frame for a single peer. It reports false when the peer is
// unknown or its outbox is full.
func (h *Hub) Send(id int, f Frame) bool {
	h.mu.RLock()
	p, ok := h.peers[id]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return h.deliver(p, f)
}

// Members returns the sorted display names of the peers in room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.members(room)
}

// Document returns the latest payload of doc in room.
func (h *Hub) Document(room, doc string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	payload, ok := h.docs[room][doc]
	return payload, ok
}

func (h *Hub) announce(room string) {
	h.mu.RLock()
	members := h.members(room)
	targets := h.roomPeers(room, 0)
	h.mu.RUnlock()

	f := Frame{Type: TypePresence, Room: room, Members: members}
	for _, t := range targets {
		h.deliver(t, f)
	}
}

// roomPeers must be called with mu held. Peer numbers start at 1, so
// except == 0 excludes nobody.
func (h *Hub) roomPeers(room string, except int) []*Peer {
	out := make([]*Peer, 0, len(h.peers))
	for pid, p := range h.peers {
		if pid != except && p.Room == room {
			out = append(out, p)
		}
	}
	return out
}

// members must be called with mu held.
func (h *Hub) members(room string) []string {
	var names []string
	for _, p := range h.peers {
		if p.Room == room {
			names = append(names, p.User)
		}
	}
	sort.Strings(names)
	return names
}

func (h *Hub) deliver(p *Peer, f Frame) bool {
	select {
	case p.Out <- f:
		framesRelayed.WithLabelValues(f.Type).Inc()
		return true
	default:
		framesDropped.WithLabelValues(f.Type).Inc()
		return false
	}
}
