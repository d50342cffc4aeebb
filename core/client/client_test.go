package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydradancer/hostctl/core/bbio"
	"github.com/hydradancer/hostctl/core/transport"
	"github.com/hydradancer/hostctl/data"
)

type call struct {
	role transport.Role
	data []byte
}

type readStep struct {
	data []byte
	err  error
}

// mockTransport scripts bulk reads and records bulk writes.
type mockTransport struct {
	writes    []call
	writeErrs []error
	reads     []readStep
	readRoles []transport.Role
	chunk     int
}

func (m *mockTransport) Write(_ context.Context, role transport.Role, buffer []byte) (int, error) {
	m.writes = append(m.writes, call{role: role, data: append([]byte(nil), buffer...)})
	if len(m.writeErrs) > 0 {
		err := m.writeErrs[0]
		m.writeErrs = m.writeErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	return len(buffer), nil
}

func (m *mockTransport) Read(_ context.Context, role transport.Role, buffer []byte) (int, error) {
	m.readRoles = append(m.readRoles, role)
	if len(m.reads) == 0 {
		return 0, nil
	}
	step := m.reads[0]
	m.reads = m.reads[1:]
	if step.err != nil {
		return 0, step.err
	}
	return copy(buffer, step.data), nil
}

func (m *mockTransport) MaxChunk() int {
	if m.chunk == 0 {
		return 512
	}
	return m.chunk
}

func (m *mockTransport) Close() error { return nil }

func TestChannelSendTrigger(t *testing.T) {
	mock := &mockTransport{}
	channel := NewChannel(mock)

	channel.SendTrigger(context.Background())

	require.Len(t, mock.writes, 1)
	assert.Equal(t, transport.CommandOut, mock.writes[0].role)
	assert.Equal(t, []byte{bbio.TriggerByte}, mock.writes[0].data)
}

func TestChannelSendSubCommandPrecondition(t *testing.T) {
	mock := &mockTransport{}
	channel := NewChannel(mock)

	err := channel.SendSubCommand(context.Background(), bbio.SetDescriptor, bbio.SubDeviceDescriptor, bbio.MaxIndex+1, 8)

	var pre *bbio.PreconditionError
	assert.True(t, errors.As(err, &pre))
	// No I/O may happen before precondition checks
	assert.Empty(t, mock.writes)
}

func TestChannelAbsorbsTransferFailure(t *testing.T) {
	mock := &mockTransport{writeErrs: []error{errors.New("pipe stalled")}}
	channel := NewChannel(mock)

	err := channel.SendSubCommand(context.Background(), bbio.SetDescriptor, bbio.SubConfigDescriptor, 0, 9)

	assert.NoError(t, err)
	assert.Len(t, mock.writes, 1)
}

func TestUploaderFramePayloadPairing(t *testing.T) {
	mock := &mockTransport{}
	uploader := NewUploader(mock)

	payloads := []struct {
		sub  bbio.SubCommand
		data []byte
	}{
		{bbio.SubDeviceDescriptor, make([]byte, 18)},
		{bbio.SubConfigDescriptor, make([]byte, 9)},
		{bbio.SubInterfaceDescriptor, make([]byte, 18)},
		{bbio.SubEndpointDescriptor, make([]byte, 7)},
	}

	for _, p := range payloads {
		require.NoError(t, uploader.Upload(context.Background(), p.sub, 0, p.data))
	}

	// One frame plus one payload per call, frame first, on the right roles
	require.Len(t, mock.writes, 2*len(payloads))
	for i, p := range payloads {
		frame := mock.writes[2*i]
		payload := mock.writes[2*i+1]

		assert.Equal(t, transport.CommandOut, frame.role)
		cmd, sub, index, size, err := bbio.DecodeSubCommand(frame.data)
		require.NoError(t, err)
		assert.Equal(t, bbio.SetDescriptor, cmd)
		assert.Equal(t, p.sub, sub)
		assert.Equal(t, 0, index)
		assert.Equal(t, len(p.data), size)

		assert.Equal(t, transport.DataOut, payload.role)
		assert.Equal(t, len(p.data), size)
		assert.Len(t, payload.data, len(p.data))
	}
}

func TestUploaderOversizedPayload(t *testing.T) {
	mock := &mockTransport{}
	uploader := NewUploader(mock)

	err := uploader.Upload(context.Background(), bbio.SubConfigDescriptor, 0, make([]byte, bbio.MaxChunkSize+1))

	var pre *bbio.PreconditionError
	assert.True(t, errors.As(err, &pre))
	assert.Empty(t, mock.writes)
}

func TestUploaderUploadSet(t *testing.T) {
	mock := &mockTransport{}
	uploader := NewUploader(mock)
	set := data.KeyboardSet()

	var seen []bbio.SubCommand
	err := uploader.UploadSet(context.Background(), set, func(d data.Descriptor) {
		seen = append(seen, d.Kind)
	})
	require.NoError(t, err)

	// One callback per descriptor, in the set's structural order
	require.Len(t, seen, len(set.Entries))
	for i, entry := range set.Entries {
		assert.Equal(t, entry.Kind, seen[i])
	}

	// Each descriptor produced a frame and a payload on the wire
	require.Len(t, mock.writes, 2*len(set.Entries))
	for i, entry := range set.Entries {
		_, sub, _, size, err := bbio.DecodeSubCommand(mock.writes[2*i].data)
		require.NoError(t, err)
		assert.Equal(t, entry.Kind, sub)
		assert.Equal(t, len(entry.Data), size)
	}
}

func TestUploaderUploadSetCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockTransport{}
	uploader := NewUploader(mock)

	err := uploader.UploadSet(ctx, data.KeyboardSet(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.writes)
}

func TestEchoRoundtrip(t *testing.T) {
	mock := &mockTransport{
		reads: []readStep{
			{data: nil},                // empty transfer
			{data: make([]byte, 8)},    // all-zero buffer, not ready
			{data: []byte("HELLO")},
		},
	}
	echo := NewEcho(mock, PollPolicy{})

	buffer, err := echo.Roundtrip(context.Background(), []byte("uryyb"))
	require.NoError(t, err)

	// Terminates on the third read, not before and not after
	assert.Len(t, mock.readRoles, 3)
	for _, role := range mock.readRoles {
		assert.Equal(t, transport.DataIn, role)
	}

	// Buffer is returned as transferred except for the forced terminator
	require.Len(t, buffer, mock.MaxChunk())
	assert.Equal(t, []byte("HELLO"), buffer[:5])
	assert.Equal(t, byte(0), buffer[len(buffer)-1])
	assert.Equal(t, "HELLO", DisplayString(buffer))

	// The request went out on the data endpoint first
	require.Len(t, mock.writes, 1)
	assert.Equal(t, transport.DataOut, mock.writes[0].role)
	assert.Equal(t, []byte("uryyb"), mock.writes[0].data)
}

func TestEchoProceedsPastWriteFailure(t *testing.T) {
	mock := &mockTransport{
		writeErrs: []error{errors.New("pipe stalled")},
		reads:     []readStep{{data: []byte("PELLO")}},
	}
	echo := NewEcho(mock, PollPolicy{})

	buffer, err := echo.Roundtrip(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "PELLO", DisplayString(buffer))
}

func TestEchoRetriesFailedRead(t *testing.T) {
	mock := &mockTransport{
		reads: []readStep{
			{err: errors.New("transfer error")},
			{data: []byte("OK")},
		},
	}
	echo := NewEcho(mock, PollPolicy{})

	buffer, err := echo.Roundtrip(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Len(t, mock.readRoles, 2)
	assert.Equal(t, "OK", DisplayString(buffer))
}

func TestEchoCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockTransport{}
	echo := NewEcho(mock, PollPolicy{})

	_, err := echo.Roundtrip(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEchoTimeout(t *testing.T) {
	// The board never answers; the policy timeout must unwind the loop.
	mock := &mockTransport{}
	echo := NewEcho(mock, PollPolicy{Interval: time.Millisecond, Timeout: 20 * time.Millisecond})

	_, err := echo.Roundtrip(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollOnceFailureThenData(t *testing.T) {
	mock := &mockTransport{
		reads: []readStep{
			{err: errors.New("transfer error")},
			{data: []byte("line\n")},
		},
	}
	poller := NewPoller(mock, time.Millisecond)

	buffer, ok := poller.PollOnce(context.Background())
	assert.False(t, ok)
	assert.Nil(t, buffer)

	buffer, ok = poller.PollOnce(context.Background())
	assert.True(t, ok)
	assert.Equal(t, []byte("line\n"), buffer)
}

func TestPollOnceZeroFirstByte(t *testing.T) {
	mock := &mockTransport{reads: []readStep{{data: make([]byte, 16)}}}
	poller := NewPoller(mock, time.Millisecond)

	buffer, ok := poller.PollOnce(context.Background())
	assert.False(t, ok)
	assert.Nil(t, buffer)
	// Exactly one read per poll
	assert.Len(t, mock.readRoles, 1)
	assert.Equal(t, transport.LogIn, mock.readRoles[0])
}

func TestPollForeverStopsOnCancel(t *testing.T) {
	mock := &mockTransport{
		reads: []readStep{
			{data: []byte("boot ok\n")},
			{data: []byte("ep1 armed\n")},
		},
	}
	poller := NewPoller(mock, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	var lines []string
	err := poller.PollForever(ctx, func(buffer []byte) {
		lines = append(lines, DisplayString(buffer))
		if len(lines) == 2 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"boot ok\n", "ep1 armed\n"}, lines)
}

func TestDisplayString(t *testing.T) {
	assert.Equal(t, "", DisplayString(nil))
	assert.Equal(t, "", DisplayString([]byte{0}))
	assert.Equal(t, "AB", DisplayString([]byte{'A', 'B', 0, 'C', 'D'}))
	// A length-trimmed chunk carries no terminator; every byte survives
	assert.Equal(t, "ABZ", DisplayString([]byte{'A', 'B', 'Z'}))
}
