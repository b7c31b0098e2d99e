package session

import (
	"context"

	"secure-session/internal/handshake"
	"secure-session/internal/record"
)

// dispatch routes one received wire message by state, the same "state
// selects the handler" idiom as branching on whether a stored
// conversation exists before picking a bootstrap or steady-state path:
// not-Established routes to the handshake machine, Established routes to
// the record layer.
func (c *Context) dispatch(ctx context.Context, wire []byte) ([]byte, error) {
	if c.machine.State() == handshake.Established {
		return c.channel.Unwrap(wire)
	}

	reply, err := c.machine.Step(ctx, wire)
	if err != nil {
		return nil, err
	}
	if reply != nil {
		if err := c.callbacks.SendData(ctx, reply); err != nil {
			return nil, err
		}
	}
	if c.machine.State() == handshake.Established {
		if err := c.onEstablished(ctx); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// onEstablished derives the record-layer channel from the newly agreed
// master key and notifies StateChanged, if set.
func (c *Context) onEstablished(ctx context.Context) error {
	ch, err := record.NewChannel(c.machine.MasterKey(), c.isClient)
	if err != nil {
		return err
	}
	c.channel = ch
	if c.callbacks.StateChanged != nil {
		c.callbacks.StateChanged(ctx, EventEstablished)
	}
	return nil
}
