package bbio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeTrigger(t *testing.T) {
	b := EncodeTrigger()

	assert.Equal(t, []byte{0x37}, b)

	// A trigger frame and a sub-command frame must never be confusable on
	// the wire. Framing is by transfer length.
	frame, err := EncodeSubCommand(SetDescriptor, SubDeviceDescriptor, 0, 18)
	assert.NoError(t, err)
	assert.NotEqual(t, len(b), len(frame))
}

func TestEncodeSubCommand(t *testing.T) {
	frame, err := EncodeSubCommand(SetDescriptor, SubConfigDescriptor, 3, 0x0122)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x02, 0x03, 0x22, 0x01}, frame)
}

func TestSubCommandRoundTrip(t *testing.T) {
	commands := []Command{MainMode, IdentifMode, SetDescriptor}
	subs := []SubCommand{
		SubDeviceDescriptor,
		SubConfigDescriptor,
		SubInterfaceDescriptor,
		SubEndpointDescriptor,
		SubStringDescriptor,
	}

	for _, cmd := range commands {
		for _, sub := range subs {
			for _, size := range []int{0, 1, 255, 256, MaxChunkSize} {
				frame, err := EncodeSubCommand(cmd, sub, MaxIndex, size)
				assert.NoError(t, err)
				assert.Len(t, frame, FrameLen)

				gotCmd, gotSub, gotIndex, gotSize, err := DecodeSubCommand(frame)
				assert.NoError(t, err)
				assert.Equal(t, cmd, gotCmd)
				assert.Equal(t, sub, gotSub)
				assert.Equal(t, MaxIndex, gotIndex)
				assert.Equal(t, size, gotSize)
			}
		}
	}
}

func TestEncodeSubCommandBounds(t *testing.T) {
	cases := []struct {
		name  string
		index int
		size  int
	}{
		{"index above limit", MaxIndex + 1, 8},
		{"negative index", -1, 8},
		{"size above chunk", 0, MaxChunkSize + 1},
		{"size above uint16", 0, 0x10000},
		{"negative size", 0, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := EncodeSubCommand(SetDescriptor, SubDeviceDescriptor, tc.index, tc.size)
			assert.Nil(t, frame)

			var pre *PreconditionError
			assert.True(t, errors.As(err, &pre))
		})
	}
}

func TestDecodeSubCommandLength(t *testing.T) {
	_, _, _, _, err := DecodeSubCommand(nil)
	assert.Error(t, err)

	_, _, _, _, err = DecodeSubCommand([]byte{0x37})
	assert.Error(t, err)

	_, _, _, _, err = DecodeSubCommand(make([]byte, 6))
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "set-descriptor", SetDescriptor.String())
	assert.Equal(t, "endpoint", SubEndpointDescriptor.String())
	assert.Equal(t, "command(0x7f)", Command(0x7F).String())
}
