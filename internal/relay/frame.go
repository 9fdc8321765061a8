// Package relay implements the collaboration relay: a TCP server that
// passes opaque document updates between the peers of a room. It does no
// merging. The last update seen for a document is what late joiners are
// sent.
package relay

// Frame types. Frames travel as one JSON object per line.
const (
	TypeWelcome  = "welcome"  // server → client, carries the peer number
	TypeJoin     = "join"     // client → server
	TypeLeave    = "leave"    // client → server
	TypeUpdate   = "update"   // both ways
	TypeSync     = "sync"     // server → client, latest payload of a document
	TypePresence = "presence" // server → client, room member list
	TypeError    = "error"    // server → client
)

// Frame is a single relay protocol message.
type Frame struct {
	Type    string   `json:"type"`
	Room    string   `json:"room,omitempty"`
	Doc     string   `json:"doc,omitempty"`
	User    string   `json:"user,omitempty"`
	Peer    int      `json:"peer,omitempty"`
	Payload string   `json:"payload,omitempty"`
	Members []string `json:"members,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// maxFrameSize bounds a single line on the wire.
const maxFrameSize = 1 << 20
