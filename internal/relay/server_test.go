package relay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepid/skillsync/internal/logger"
)

func startServer(t *testing.T, maxPeers int) *Server {
	t.Helper()
	log := logger.Discard()
	srv := NewServer("127.0.0.1:0", NewHub(16, log), NewPeers(maxPeers), log)
	require.NoError(t, srv.Listen())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()
	t.Cleanup(func() {
		require.NoError(t, srv.Close())
		require.NoError(t, <-errCh)
	})
	return srv
}

func dial(t *testing.T, srv *Server) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// waitFor returns the next frame of the given type, skipping others.
func waitFor(t *testing.T, c *Client, typ string) Frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-c.Frames():
			require.True(t, ok, "connection closed while waiting for %s", typ)
			if f.Type == typ {
				return f
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s frame", typ)
		}
	}
}

func waitMembers(t *testing.T, c *Client, want ...string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f := waitFor(t, c, TypePresence)
		if assert.ObjectsAreEqual(want, f.Members) {
			return
		}
	}
	t.Fatalf("members never became %v", want)
}

func TestRelayEndToEnd(t *testing.T) {
	srv := startServer(t, 8)

	ana := dial(t, srv)
	ben := dial(t, srv)
	assert.NotEqual(t, ana.PeerID(), ben.PeerID())

	require.NoError(t, ana.Join("room-1", "ana"))
	waitMembers(t, ana, "ana")
	require.NoError(t, ben.Join("room-1", "ben"))
	waitMembers(t, ben, "ana", "ben")

	require.NoError(t, ana.Publish("notes", "shared text"))
	f := waitFor(t, ben, TypeUpdate)
	assert.Equal(t, "notes", f.Doc)
	assert.Equal(t, "shared text", f.Payload)
	assert.Equal(t, "ana", f.User)

	late := dial(t, srv)
	require.NoError(t, late.Join("room-1", "cy"))
	s := waitFor(t, late, TypeSync)
	assert.Equal(t, "notes", s.Doc)
	assert.Equal(t, "shared text", s.Payload)
}

func TestRelayReportsProtocolErrors(t *testing.T) {
	srv := startServer(t, 8)
	c := dial(t, srv)

	require.NoError(t, c.Publish("notes", "before join"))
	f := waitFor(t, c, TypeError)
	assert.Contains(t, f.Error, "has not joined")

	require.NoError(t, c.send(Frame{Type: "bogus"}))
	f = waitFor(t, c, TypeError)
	assert.Contains(t, f.Error, "unknown frame type")
}

func TestRelayRefusesBeyondCapacity(t *testing.T) {
	srv := startServer(t, 1)
	first := dial(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, srv.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay is full")

	// Capacity returns once the first peer leaves.
	require.NoError(t, first.Close())
	require.Eventually(t, func() bool {
		c, err := Dial(ctx, srv.Addr().String())
		if err != nil {
			return false
		}
		c.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeRequiresListen(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewHub(1, nil), NewPeers(1), nil)
	assert.Error(t, srv.Serve())
	assert.Nil(t, srv.Addr())
}
