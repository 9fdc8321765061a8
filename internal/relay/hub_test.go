package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepid/skillsync/internal/logger"
)

// drain returns every frame currently queued for p.
func drain(p *Peer) []Frame {
	var out []Frame
	for {
		select {
		case f := <-p.Out:
			out = append(out, f)
		default:
			return out
		}
	}
}

func ofType(frames []Frame, typ string) []Frame {
	var out []Frame
	for _, f := range frames {
		if f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

func TestHubPublishReachesRoomOnly(t *testing.T) {
	h := NewHub(8, logger.Discard())
	a, b, c := h.Register(1), h.Register(2), h.Register(3)

	require.NoError(t, h.Join(1, "room-1", "ana"))
	require.NoError(t, h.Join(2, "room-1", "ben"))
	require.NoError(t, h.Join(3, "room-2", "cy"))
	drain(a)
	drain(b)
	drain(c)

	require.NoError(t, h.Publish(1, "notes", "hello"))

	assert.Empty(t, drain(a), "sender does not receive its own update")
	got := drain(b)
	require.Len(t, got, 1)
	assert.Equal(t, Frame{Type: TypeUpdate, Room: "room-1", Doc: "notes", User: "ana", Peer: 1, Payload: "hello"}, got[0])
	assert.Empty(t, drain(c))
}

func TestHubLateJoinerGetsLatestDocuments(t *testing.T) {
	h := NewHub(8, logger.Discard())
	h.Register(1)
	late := h.Register(2)

	require.NoError(t, h.Join(1, "r", "ana"))
	require.NoError(t, h.Publish(1, "notes", "v1"))
	require.NoError(t, h.Publish(1, "notes", "v2"))
	require.NoError(t, h.Publish(1, "code", "fmt.Println()"))

	require.NoError(t, h.Join(2, "r", "ben"))
	syncs := ofType(drain(late), TypeSync)
	require.Len(t, syncs, 2)
	assert.Equal(t, "code", syncs[0].Doc)
	assert.Equal(t, "fmt.Println()", syncs[0].Payload)
	assert.Equal(t, "notes", syncs[1].Doc)
	assert.Equal(t, "v2", syncs[1].Payload)

	payload, ok := h.Document("r", "notes")
	assert.True(t, ok)
	assert.Equal(t, "v2", payload)
}

func TestHubPresence(t *testing.T) {
	h := NewHub(8, logger.Discard())
	a := h.Register(1)
	h.Register(2)

	require.NoError(t, h.Join(1, "r", "ana"))
	require.NoError(t, h.Join(2, "r", "ben"))

	presence := ofType(drain(a), TypePresence)
	require.Len(t, presence, 2)
	assert.Equal(t, []string{"ana"}, presence[0].Members)
	assert.Equal(t, []string{"ana", "ben"}, presence[1].Members)

	h.Unregister(2)
	presence = ofType(drain(a), TypePresence)
	require.Len(t, presence, 1)
	assert.Equal(t, []string{"ana"}, presence[0].Members)
	assert.Equal(t, []string{"ana"}, h.Members("r"))
}

func TestHubRejoinSwitchesRooms(t *testing.T) {
	h := NewHub(8, logger.Discard())
	h.Register(1)

	require.NoError(t, h.Join(1, "first", "ana"))
	require.NoError(t, h.Join(1, "second", "ana"))

	assert.Empty(t, h.Members("first"))
	assert.Equal(t, []string{"ana"}, h.Members("second"))
}

func TestHubErrors(t *testing.T) {
	h := NewHub(8, logger.Discard())
	h.Register(1)

	assert.Error(t, h.Join(1, "", "ana"))
	assert.Error(t, h.Join(9, "r", "ghost"))
	assert.Error(t, h.Publish(1, "notes", "not in a room"))
	assert.Error(t, h.Publish(9, "notes", "unknown peer"))

	require.NoError(t, h.Join(1, "r", "ana"))
	assert.Error(t, h.Publish(1, "", "no doc"))
	assert.False(t, h.Send(9, Frame{Type: TypeError}))
}

func TestHubDropsWhenOutboxFull(t *testing.T) {
	h := NewHub(1, logger.Discard())
	h.Register(1)
	slow := h.Register(2)

	require.NoError(t, h.Join(1, "r", "ana"))
	require.NoError(t, h.Join(2, "r", "ben"))
	drain(slow)

	require.NoError(t, h.Publish(1, "notes", "first"))
	require.NoError(t, h.Publish(1, "notes", "second"))

	got := drain(slow)
	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Payload)

	// The document itself still holds the latest value.
	payload, _ := h.Document("r", "notes")
	assert.Equal(t, "second", payload)
}
