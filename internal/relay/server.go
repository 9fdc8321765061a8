package relay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const writeTimeout = 10 * time.Second

// Server accepts relay connections and hands each one to the hub.
type Server struct {
	addr  string
	hub   *Hub
	peers *Peers
	log   *slog.Logger

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewServer creates a relay server for addr (host:port).
func NewServer(addr string, hub *Hub, peers *Peers, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		addr:  addr,
		hub:   hub,
		peers: peers,
		log:   log,
		conns: make(map[net.Conn]struct{}),
	}
}

// Listen binds the listening socket without accepting yet.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ListenAndServe binds and accepts connections until Close.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Serve accepts connections on the bound listener. It returns nil once the
// server is closed.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("serve: listener not bound")
	}

	s.log.Info("relay listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn("relay accept error", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return nil
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handle(conn)
		}()
	}
}

// Close stops accepting, disconnects every peer and waits for their
// handlers to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	id, ok := s.peers.Acquire()
	if !ok {
		s.log.Warn("relay full, refusing peer", "remote", remote)
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = json.NewEncoder(conn).Encode(Frame{Type: TypeError, Error: "relay is full"})
		return
	}
	defer s.peers.Release(id)

	peer := s.hub.Register(id)
	defer s.hub.Unregister(id)

	log := s.log.With("peer", id, "remote", remote)
	log.Info("relay peer connected")

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(conn, peer, done, log)
	}()
	defer func() {
		close(done)
		<-writerDone
		log.Info("relay peer disconnected")
	}()

	s.hub.Send(id, Frame{Type: TypeWelcome, Peer: id})

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	for scanner.Scan() {
		var f Frame
		if err := json.Unmarshal(scanner.Bytes(), &f); err != nil {
			s.hub.Send(id, Frame{Type: TypeError, Error: "malformed frame"})
			continue
		}
		if err := s.dispatch(id, f); err != nil {
			s.hub.Send(id, Frame{Type: TypeError, Error: err.Error()})
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warn("relay read error", "error", err)
	}
}

func (s *Server) dispatch(id int, f Frame) error {
	switch f.Type {
	case TypeJoin:
		return s.hub.Join(id, f.Room, f.User)
	case TypeLeave:
		s.hub.Leave(id)
		return nil
	case TypeUpdate:
		return s.hub.Publish(id, f.Doc, f.Payload)
	default:
		return fmt.Errorf("unknown frame type %q", f.Type)
	}
}

func (s *Server) writeLoop(conn net.Conn, peer *Peer, done <-chan struct{}, log *slog.Logger) {
	enc := json.NewEncoder(conn)
	for {
		select {
		case f := <-peer.Out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := enc.Encode(f); err != nil {
				log.Warn("relay write error", "error", err)
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}
