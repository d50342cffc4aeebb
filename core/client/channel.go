// Package client implements the host side of the BBIO protocol: the
// command channel, descriptor uploads, the echo test and the debug log
// poller. All transfer failures below the command layer are best effort:
// the wire format has no acknowledgement, so a failed write is reported on
// the console and execution continues.
package client

import (
	"context"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"

	"github.com/hydradancer/hostctl/core/bbio"
	"github.com/hydradancer/hostctl/core/transport"
)

// Channel sends encoded BBIO frames on the command endpoint.
type Channel struct {
	t transport.Transport
}

func NewChannel(t transport.Transport) *Channel {
	return &Channel{t: t}
}

// SendTrigger switches the board into streaming command mode. The board
// never acknowledges, so a transfer failure is only reported.
func (c *Channel) SendTrigger(ctx context.Context) {
	if _, err := c.t.Write(ctx, transport.CommandOut, bbio.EncodeTrigger()); err != nil {
		logTransferError("trigger not transmitted", err)
	}
}

// SendSubCommand announces a descriptor payload of the given size. A
// PreconditionError from the codec aborts before any I/O and propagates;
// a transfer failure is reported and absorbed.
func (c *Channel) SendSubCommand(ctx context.Context, cmd bbio.Command, sub bbio.SubCommand, index, size int) error {
	frame, err := bbio.EncodeSubCommand(cmd, sub, index, size)
	if err != nil {
		return err
	}

	if _, err := c.t.Write(ctx, transport.CommandOut, frame); err != nil {
		logTransferError("sub-command not transmitted", err)
	}
	return nil
}

func logTransferError(what string, err error) {
	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] [ERROR] %s: %s}}::red", time.Now().Format(time.Stamp), what, err.Error()))
}
