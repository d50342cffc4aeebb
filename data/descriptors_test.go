package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydradancer/hostctl/core/bbio"
)

func TestKeyboardSetOrder(t *testing.T) {
	set := KeyboardSet()

	require.Len(t, set.Entries, 4)
	assert.Equal(t, bbio.SubDeviceDescriptor, set.Entries[0].Kind)
	assert.Equal(t, bbio.SubConfigDescriptor, set.Entries[1].Kind)
	assert.Equal(t, bbio.SubInterfaceDescriptor, set.Entries[2].Kind)
	assert.Equal(t, bbio.SubEndpointDescriptor, set.Entries[3].Kind)

	for _, entry := range set.Entries {
		assert.NotEmpty(t, entry.Data)
		assert.LessOrEqual(t, len(entry.Data), bbio.MaxChunkSize)
		assert.Equal(t, 0, entry.Index)
	}

	// Device descriptor blobs start with their own length
	assert.Equal(t, byte(0x12), set.Entries[0].Data[0])
	assert.Len(t, set.Entries[0].Data, 18)
}

func TestLoadDescriptorSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	content := `{
		"name": "mouse",
		"device": "12010002000000400a0b0c0d0001010203 01",
		"config": "0902220001010080 32",
		"interface": "090400000103010200",
		"endpoint": "0705810308000a",
		"strings": ["0403090409"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// Whitespace inside hex strings is not tolerated
	_, err := LoadDescriptorSet(path)
	assert.Error(t, err)

	content = `{
		"name": "mouse",
		"device": "1201000200000040 ",
		"config": "09022200010100803 2",
		"interface": "090400000103010200",
		"endpoint": "0705810308000a"
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err = LoadDescriptorSet(path)
	assert.Error(t, err)

	content = `{
		"name": "mouse",
		"device": "12010002000000400a0b0c0d000101020301",
		"config": "090222000101008032",
		"interface": "090400000103010200",
		"endpoint": "0705810308000a",
		"strings": ["0403090409"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadDescriptorSet(path)
	require.NoError(t, err)
	assert.Equal(t, "mouse", set.Name)
	require.Len(t, set.Entries, 5)
	assert.Equal(t, bbio.SubStringDescriptor, set.Entries[4].Kind)
	assert.Equal(t, []byte{0x04, 0x03, 0x09, 0x04, 0x09}, set.Entries[4].Data)
}

func TestLoadDescriptorSetMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	content := `{"device": "12", "config": "09"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadDescriptorSet(path)
	assert.ErrorContains(t, err, "interface")
}
