package client

import (
	"context"
	"time"

	"github.com/hydradancer/hostctl/core/transport"
)

// logBufferSize matches the scratch buffer the reference deployment reads
// debug output into.
const logBufferSize = 4096

// Poller reads the firmware debug log endpoint.
//
// Known quirk, preserved on purpose: the first IN transfer after certain
// prior operations can come back empty even though log data is pending.
// Callers that need one guaranteed read poll twice and keep the second
// result; the root cause sits below this layer.
type Poller struct {
	t        transport.Transport
	interval time.Duration
}

func NewPoller(t transport.Transport, interval time.Duration) *Poller {
	return &Poller{t: t, interval: interval}
}

// PollOnce issues exactly one read on the log endpoint. A transfer failure
// is reported and surfaces as "no data"; a successful read whose first byte
// is zero is the normal nothing-to-report case, also "no data".
func (p *Poller) PollOnce(ctx context.Context) ([]byte, bool) {
	buffer := make([]byte, logBufferSize)

	n, err := p.t.Read(ctx, transport.LogIn, buffer)
	if err != nil {
		if ctx.Err() == nil {
			logTransferError("log data not received", err)
		}
		return nil, false
	}
	if n == 0 || buffer[0] == 0 {
		return nil, false
	}

	return buffer[:n], true
}

// PollForever polls the log endpoint until ctx is cancelled, handing every
// received buffer to sink. Returns the cancellation cause.
func (p *Poller) PollForever(ctx context.Context, sink func([]byte)) error {
	for {
		if buffer, ok := p.PollOnce(ctx); ok {
			sink(buffer)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
