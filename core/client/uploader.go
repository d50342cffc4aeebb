package client

import (
	"context"
	"fmt"

	"github.com/hydradancer/hostctl/core/bbio"
	"github.com/hydradancer/hostctl/core/transport"
	"github.com/hydradancer/hostctl/data"
)

// Uploader pushes descriptor blobs to the board. Every upload is a
// sub-command frame on the command endpoint immediately followed by the
// payload on the data endpoint. The firmware is stateless between uploads
// and identifies a descriptor only by the (kind, index) pair of the frame,
// so callers must keep the structural order device, config, interface,
// endpoint (strings last); nothing on the wire can detect a wrong order
// after the fact.
type Uploader struct {
	channel *Channel
	t       transport.Transport
}

func NewUploader(t transport.Transport) *Uploader {
	return &Uploader{channel: NewChannel(t), t: t}
}

// Upload sends one descriptor. The size announced in the frame always
// equals the payload length. A codec precondition failure (oversized
// payload, bad index) aborts before I/O; transfer failures are reported
// and absorbed, and do not roll back earlier uploads.
func (u *Uploader) Upload(ctx context.Context, sub bbio.SubCommand, index int, payload []byte) error {
	if err := u.channel.SendSubCommand(ctx, bbio.SetDescriptor, sub, index, len(payload)); err != nil {
		return err
	}

	if _, err := u.t.Write(ctx, transport.DataOut, payload); err != nil {
		logTransferError("descriptor payload not transmitted", err)
	}
	return nil
}

// UploadSet drives a whole descriptor set in the set's own order, which is
// the structural order by construction. uploaded, when non-nil, runs after
// each descriptor goes out. A rejected descriptor or a cancelled context
// stops the set; descriptors already uploaded stay on the board.
func (u *Uploader) UploadSet(ctx context.Context, set data.DescriptorSet, uploaded func(data.Descriptor)) error {
	for _, entry := range set.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := u.Upload(ctx, entry.Kind, entry.Index, entry.Data); err != nil {
			return fmt.Errorf("upload of %s descriptor rejected: %w", entry.Kind, err)
		}

		if uploaded != nil {
			uploaded(entry)
		}
	}
	return nil
}
