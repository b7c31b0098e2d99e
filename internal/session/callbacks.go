package session

import "context"

// Event is notified to Callbacks.StateChanged. Established is currently
// the only event the core raises.
type Event int

const (
	EventEstablished Event = iota
)

func (e Event) String() string {
	switch e {
	case EventEstablished:
		return "Established"
	default:
		return "Unknown"
	}
}

// Callbacks is the external collaborator bundle a Context is built with:
// the two blocking I/O callbacks, an optional state-change notification,
// and identity-to-public-key lookup. The core keeps a copy of the bundle
// and only calls these functions; it never frees anything they refer to,
// and the caller owns their lifetime.
type Callbacks struct {
	// SendData transmits one already-framed wire message.
	SendData func(ctx context.Context, wire []byte) error
	// ReceiveData blocks for and returns exactly one framed wire message.
	ReceiveData func(ctx context.Context) ([]byte, error)
	// StateChanged is notified when the session reaches Established; may
	// be nil.
	StateChanged func(ctx context.Context, event Event)
	// GetPublicKeyForID returns the EC_PUB_KEY_PREF container wrapping
	// id's long-term signing public key. An error means "not found".
	GetPublicKeyForID func(ctx context.Context, id string) ([]byte, error)
}
