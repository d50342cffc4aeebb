// Package bbio encodes the command frames understood by the HydraDancer
// firmware. The protocol has two frame shapes: a single trigger byte that
// switches the board into streaming command mode, and a 5-byte sub-command
// frame that announces a descriptor payload. The firmware sends no
// structured replies, so only frame encoding leaves this package; decoding
// exists for the wire round-trip checks.
package bbio

import (
	"fmt"
)

// Command selects the firmware mode a frame addresses.
type Command byte

const (
	MainMode      Command = 0x00
	IdentifMode   Command = 0x01
	SetDescriptor Command = 0x02
)

// SubCommand names the descriptor slot a SetDescriptor frame targets.
type SubCommand byte

const (
	SubDeviceDescriptor    SubCommand = 0x01
	SubConfigDescriptor    SubCommand = 0x02
	SubInterfaceDescriptor SubCommand = 0x03
	SubEndpointDescriptor  SubCommand = 0x04
	SubStringDescriptor    SubCommand = 0x05
)

const (
	// TriggerByte is the magic value that enters streaming command mode.
	TriggerByte = 0x37

	// FrameLen is the length of a sub-command frame on the wire. A trigger
	// frame is a single byte, so the two shapes are distinguished by
	// transfer length alone.
	FrameLen = 5

	// MaxIndex is the highest descriptor slot the firmware accepts.
	MaxIndex = 16

	// MaxChunkSize bounds a single bulk chunk on EP1 (USB high speed).
	MaxChunkSize = 512

	maxWireSize = 0xFFFF
)

// PreconditionError reports caller misuse of the codec. It is raised before
// any I/O and must not be retried.
type PreconditionError struct {
	Field string
	Value int
	Limit int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("bbio: %s %d exceeds limit %d", e.Field, e.Value, e.Limit)
}

func (c Command) String() string {
	switch c {
	case MainMode:
		return "main-mode"
	case IdentifMode:
		return "identification-mode"
	case SetDescriptor:
		return "set-descriptor"
	}
	return fmt.Sprintf("command(%#02x)", byte(c))
}

func (s SubCommand) String() string {
	switch s {
	case SubDeviceDescriptor:
		return "device"
	case SubConfigDescriptor:
		return "config"
	case SubInterfaceDescriptor:
		return "interface"
	case SubEndpointDescriptor:
		return "endpoint"
	case SubStringDescriptor:
		return "string"
	}
	return fmt.Sprintf("subcommand(%#02x)", byte(s))
}

// EncodeTrigger returns the one-byte frame that switches the board into
// streaming command mode.
func EncodeTrigger() []byte {
	return []byte{TriggerByte}
}

// EncodeSubCommand builds a 5-byte sub-command frame: command, sub-command,
// descriptor index, then the payload size as a little-endian 16-bit value.
// Bounds are checked before anything touches the wire.
func EncodeSubCommand(cmd Command, sub SubCommand, index, size int) ([]byte, error) {
	if index < 0 || index > MaxIndex {
		return nil, &PreconditionError{Field: "index", Value: index, Limit: MaxIndex}
	}
	if size < 0 || size > maxWireSize {
		return nil, &PreconditionError{Field: "size", Value: size, Limit: maxWireSize}
	}
	if size > MaxChunkSize {
		return nil, &PreconditionError{Field: "size", Value: size, Limit: MaxChunkSize}
	}

	return []byte{
		byte(cmd),
		byte(sub),
		byte(index),
		byte(size % 256),
		byte(size / 256),
	}, nil
}

// DecodeSubCommand recovers the fields of a 5-byte sub-command frame.
func DecodeSubCommand(buffer []byte) (Command, SubCommand, int, int, error) {
	if len(buffer) != FrameLen {
		return 0, 0, 0, 0, fmt.Errorf("bbio: sub-command frame must be %d bytes, got %d", FrameLen, len(buffer))
	}

	cmd := Command(buffer[0])
	sub := SubCommand(buffer[1])
	index := int(buffer[2])
	size := int(buffer[3]) + int(buffer[4])*256

	return cmd, sub, index, size, nil
}
