package peersig

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Transport is the minimal byte-stream abstraction a Channel drives; a
// real deployment backs it with the peer ACL's L2CAP/RFCOMM pipe.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Recv(ctx context.Context) ([]byte, error)
}

// Handler processes a decoded Envelope arriving on a Channel.
type Handler func(env Envelope)

// Channel is one of the three peer-signalling channels: it owns exactly
// one incoming and one outgoing goroutine, and correlates each outbound
// message with a uuid for logging.
type Channel struct {
	id        ChannelID
	transport Transport
	handler   Handler

	outbox chan outboundMsg

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

type outboundMsg struct {
	env    Envelope
	result chan error
}

// NewChannel creates a channel bound to id and transport. Start must be
// called to begin its incoming/outgoing tasks.
func NewChannel(id ChannelID, transport Transport, handler Handler) *Channel {
	return &Channel{
		id:        id,
		transport: transport,
		handler:   handler,
		outbox:    make(chan outboundMsg, 16),
	}
}

// Start launches the channel's single incoming and single outgoing task.
func (c *Channel) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.outgoingTask(ctx)
	go c.incomingTask(ctx)
}

// Stop cancels both tasks.
func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
}

// Send enqueues msg for delivery on the outgoing task, blocking until it
// has been written to the transport or ctx is cancelled. correlationID is
// returned for logging even on failure.
func (c *Channel) Send(ctx context.Context, typ MessageType, msg any) (correlationID uuid.UUID, err error) {
	correlationID = uuid.New()
	env, err := Encode(c.id, typ, msg)
	if err != nil {
		return correlationID, err
	}

	result := make(chan error, 1)
	select {
	case c.outbox <- outboundMsg{env: env, result: result}:
	case <-ctx.Done():
		return correlationID, ctx.Err()
	}

	select {
	case err := <-result:
		return correlationID, err
	case <-ctx.Done():
		return correlationID, ctx.Err()
	}
}

func (c *Channel) outgoingTask(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-c.outbox:
			data, err := MarshalEnvelope(m.env)
			if err == nil {
				err = c.transport.Send(ctx, data)
			}
			m.result <- err
		}
	}
}

func (c *Channel) incomingTask(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := c.transport.Recv(ctx)
		if err != nil {
			return
		}
		env, err := UnmarshalEnvelope(data)
		if err != nil {
			continue
		}
		if c.handler != nil {
			c.handler(env)
		}
	}
}
