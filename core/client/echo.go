package client

import (
	"context"
	"time"

	"github.com/hydradancer/hostctl/core/transport"
)

// PollPolicy bounds a read-poll loop. A zero Interval means a tight loop;
// a zero Timeout means the loop only ends on cancellation or data.
type PollPolicy struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Echo drives the firmware cipher test: write a message, poll until the
// ciphered message comes back.
type Echo struct {
	t      transport.Transport
	policy PollPolicy
}

func NewEcho(t transport.Transport, policy PollPolicy) *Echo {
	return &Echo{t: t, policy: policy}
}

// Roundtrip writes payload on the data endpoint and polls the response
// endpoint until the first byte of the buffer is non-zero. An empty or
// all-zero read means the board is not ready yet and is retried, as is a
// failed read; only cancellation or the policy timeout ends the loop
// without data. A failed write is reported and the read phase runs anyway:
// with no acknowledgement on the wire there is no way to know whether the
// board received the message.
//
// The returned buffer is the raw transfer buffer with its final byte
// forced to NUL; use DisplayString to render it.
func (e *Echo) Roundtrip(ctx context.Context, payload []byte) ([]byte, error) {
	if _, err := e.t.Write(ctx, transport.DataOut, payload); err != nil {
		logTransferError("echo payload not transmitted", err)
	}

	if e.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.policy.Timeout)
		defer cancel()
	}

	buffer := make([]byte, e.t.MaxChunk())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := e.t.Read(ctx, transport.DataIn, buffer)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logTransferError("echo response not received", err)
		case n > 0 && buffer[0] != 0:
			buffer[len(buffer)-1] = 0
			return buffer, nil
		}

		if e.policy.Interval > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.policy.Interval):
			}
		}
	}
}
