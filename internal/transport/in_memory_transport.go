package transport

// file: internal/transport/in_memory_transport.go

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// InMemoryTransport is one end of a channel-backed Transport pair used in tests.
type InMemoryTransport struct {
	incoming chan []byte
	outgoing chan []byte
	done     chan struct{}
	peerDone chan struct{}

	closeOnce sync.Once
	readLock  sync.Mutex
	writeLock sync.Mutex
}

// InMemoryTransportPair links a client end and a server end.
type InMemoryTransportPair struct {
	ClientTransport *InMemoryTransport
	ServerTransport *InMemoryTransport
}

// NewInMemoryTransportPair returns two transports; frames written on one are read on the other.
func NewInMemoryTransportPair() *InMemoryTransportPair {
	clientToServer := make(chan []byte, 100)
	serverToClient := make(chan []byte, 100)
	clientDone := make(chan struct{})
	serverDone := make(chan struct{})

	return &InMemoryTransportPair{
		ClientTransport: &InMemoryTransport{
			incoming: serverToClient,
			outgoing: clientToServer,
			done:     clientDone,
			peerDone: serverDone,
		},
		ServerTransport: &InMemoryTransport{
			incoming: clientToServer,
			outgoing: serverToClient,
			done:     serverDone,
			peerDone: clientDone,
		},
	}
}

// ReadMessage returns the next frame. Pending frames are drained before a
// closed peer is reported.
func (t *InMemoryTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	t.readLock.Lock()
	defer t.readLock.Unlock()

	select {
	case <-t.done:
		return nil, NewClosedError("read")
	default:
	}

	select {
	case msg := <-t.incoming:
		return msg, ValidateMessage(msg)
	default:
	}

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "context cancelled during read")
	case <-t.done:
		return nil, NewClosedError("read")
	case <-t.peerDone:
		select {
		case msg := <-t.incoming:
			return msg, ValidateMessage(msg)
		default:
			return nil, NewClosedError("read from closed peer")
		}
	case msg := <-t.incoming:
		return msg, ValidateMessage(msg)
	}
}

// WriteMessage queues a frame for the peer.
func (t *InMemoryTransport) WriteMessage(ctx context.Context, message []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()

	select {
	case <-t.done:
		return NewClosedError("write")
	default:
	}
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message)
	}

	frame := append([]byte(nil), message...)
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "context cancelled during write")
	case <-t.done:
		return NewClosedError("write")
	case t.outgoing <- frame:
		return nil
	}
}

// Close closes this end. The peer sees a closed error once it has drained
// the frames already queued.
func (t *InMemoryTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
