// Package transport owns the USB connection to the HydraDancer board and
// exposes it as four role-addressed bulk channels. The device handle is the
// only long-lived resource in the program: it is opened once at startup,
// passed to every protocol client, and released exactly once on shutdown.
package transport

import (
	"context"
	"fmt"
)

// Role is one of the four logical channels the protocol uses.
type Role int

const (
	// CommandOut carries BBIO command frames.
	CommandOut Role = iota
	// DataOut carries descriptor payloads and echo requests.
	DataOut
	// DataIn carries echo responses.
	DataIn
	// LogIn carries the firmware debug log.
	LogIn
)

func (r Role) String() string {
	switch r {
	case CommandOut:
		return "command/out"
	case DataOut:
		return "data/out"
	case DataIn:
		return "data/in"
	case LogIn:
		return "log/in"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Transport is the bulk-transfer capability the protocol clients run on.
// Every call blocks until the underlying transfer completes, fails, or the
// context is cancelled.
type Transport interface {
	// Write issues one bulk OUT transfer on the endpoint bound to role.
	Write(ctx context.Context, role Role, buffer []byte) (int, error)
	// Read issues one bulk IN transfer on the endpoint bound to role.
	Read(ctx context.Context, role Role, buffer []byte) (int, error)
	// MaxChunk reports the largest single transfer the deployment allows.
	MaxChunk() int
	// Close releases the claimed interface and the device handle.
	Close() error
}

// Setup stages, reported by SetupError so initialization failures can be
// told apart from library failures.
const (
	StageContext  = "context"
	StageOpen     = "open"
	StageClaim    = "claim"
	StageEndpoint = "endpoint"
)

// SetupError reports a startup failure with the stage that failed. It is
// fatal: no protocol operation may be attempted after one.
type SetupError struct {
	Stage string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("transport setup failed at stage %q: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}
