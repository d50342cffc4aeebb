package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydradancer/hostctl/data"
)

func sampleRecords() []data.TransferRecord {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return []data.TransferRecord{
		{Time: base, Operation: "emulate", Role: "command/out", Direction: data.DirOut, Length: 5, Note: "device frame"},
		{Time: base.Add(time.Millisecond), Operation: "emulate", Role: "data/out", Direction: data.DirOut, Length: 18, Note: "device payload"},
		{Time: base.Add(time.Second), Operation: "cipher", Role: "data/in", Direction: data.DirIn, Length: 512, Note: "response"},
	}
}

func TestSessionRecordStampsTime(t *testing.T) {
	session := NewSession()
	session.Record(data.TransferRecord{Operation: "log", Role: "log/in", Direction: data.DirIn, Length: 12})

	records := session.Records()
	require.Len(t, records, 1)
	assert.False(t, records[0].Time.IsZero())
}

func TestFilterByDirection(t *testing.T) {
	in := FilterByDirection(sampleRecords(), data.DirIn)
	require.Len(t, in, 1)
	assert.Equal(t, "cipher", in[0].Operation)

	out := FilterByDirection(sampleRecords(), data.DirOut)
	assert.Len(t, out, 2)
}

func TestExportJSON(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "session")

	written, err := Export(sampleRecords(), "json", fn)
	require.NoError(t, err)
	assert.Equal(t, fn+".json", written)

	raw, err := os.ReadFile(written)
	require.NoError(t, err)

	var decoded []data.TransferRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "emulate", decoded[0].Operation)
	assert.Equal(t, 512, decoded[2].Length)
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(sampleRecords(), "csv", filepath.Join(t.TempDir(), "session"))
	assert.Error(t, err)
}

func TestGeneratePDF(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "session.pdf")

	require.NoError(t, GeneratePDF(sampleRecords(), fn))

	info, err := os.Stat(fn)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestHexDump(t *testing.T) {
	dump := HexDump([]byte("HELLO\x00WORLD and more than sixteen bytes"))

	lines := strings.Split(strings.TrimRight(dump, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "48 45 4c 4c 4f 00")

	assert.Empty(t, HexDump(nil))
}
