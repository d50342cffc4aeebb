package data

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hydradancer/hostctl/core/bbio"
)

// Descriptor is one opaque descriptor blob with the slot it is uploaded to.
// The firmware identifies a descriptor only by the (kind, index) pair in
// the frame preceding it; the bytes themselves are never inspected here.
type Descriptor struct {
	Kind  bbio.SubCommand
	Index int
	Data  []byte
}

// DescriptorSet is a full identity for the emulated device, ordered the way
// the firmware must receive it: device, config, interface, endpoint, then
// any string descriptors. The firmware is stateless between uploads, so
// this order is the only correctness guarantee there is.
type DescriptorSet struct {
	Name    string
	Entries []Descriptor
}

// KeyboardSet returns the built-in USB HID boot keyboard identity, the
// profile the reference firmware ships with.
func KeyboardSet() DescriptorSet {
	return DescriptorSet{
		Name: "keyboard",
		Entries: []Descriptor{
			{
				Kind: bbio.SubDeviceDescriptor,
				Data: []byte{
					0x12, 0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x40,
					0x37, 0x13, 0x37, 0x13, 0x00, 0x01, 0x01, 0x02,
					0x03, 0x01,
				},
			},
			{
				Kind: bbio.SubConfigDescriptor,
				Data: []byte{
					0x09, 0x02, 0x22, 0x00, 0x01, 0x01, 0x00, 0x80,
					0x32,
				},
			},
			{
				// Interface descriptor followed by its HID descriptor
				Kind: bbio.SubInterfaceDescriptor,
				Data: []byte{
					0x09, 0x04, 0x00, 0x00, 0x01, 0x03, 0x01, 0x01,
					0x00,
					0x09, 0x21, 0x11, 0x01, 0x00, 0x01, 0x22, 0x3F,
					0x00,
				},
			},
			{
				// Interrupt IN, EP1, 8 byte reports, 10ms interval
				Kind: bbio.SubEndpointDescriptor,
				Data: []byte{
					0x07, 0x05, 0x81, 0x03, 0x08, 0x00, 0x0A,
				},
			},
		},
	}
}

// descriptorFile is the on-disk layout of a descriptor set: hex strings per
// slot, string descriptors optional.
type descriptorFile struct {
	Name      string   `json:"name"`
	Device    string   `json:"device"`
	Config    string   `json:"config"`
	Interface string   `json:"interface"`
	Endpoint  string   `json:"endpoint"`
	Strings   []string `json:"strings,omitempty"`
}

// LoadDescriptorSet reads a descriptor set from a JSON file. The four
// structural descriptors are required; string descriptors are optional and
// indexed in file order.
func LoadDescriptorSet(path string) (DescriptorSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return DescriptorSet{}, fmt.Errorf("failed to read descriptor file: %w", err)
	}

	var file descriptorFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return DescriptorSet{}, fmt.Errorf("failed to parse descriptor file %s: %w", path, err)
	}

	set := DescriptorSet{Name: file.Name}
	if set.Name == "" {
		set.Name = path
	}

	structural := []struct {
		field string
		kind  bbio.SubCommand
		hex   string
	}{
		{"device", bbio.SubDeviceDescriptor, file.Device},
		{"config", bbio.SubConfigDescriptor, file.Config},
		{"interface", bbio.SubInterfaceDescriptor, file.Interface},
		{"endpoint", bbio.SubEndpointDescriptor, file.Endpoint},
	}

	for _, s := range structural {
		if s.hex == "" {
			return DescriptorSet{}, fmt.Errorf("descriptor file %s: missing %q descriptor", path, s.field)
		}
		blob, err := hex.DecodeString(s.hex)
		if err != nil {
			return DescriptorSet{}, fmt.Errorf("descriptor file %s: bad hex in %q: %w", path, s.field, err)
		}
		set.Entries = append(set.Entries, Descriptor{Kind: s.kind, Data: blob})
	}

	for i, str := range file.Strings {
		blob, err := hex.DecodeString(str)
		if err != nil {
			return DescriptorSet{}, fmt.Errorf("descriptor file %s: bad hex in string #%d: %w", path, i, err)
		}
		set.Entries = append(set.Entries, Descriptor{Kind: bbio.SubStringDescriptor, Index: i, Data: blob})
	}

	return set, nil
}
