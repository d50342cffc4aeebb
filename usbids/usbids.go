// Package usbids resolves vendor/product identifiers against the usb.ids
// database shipped with usbutils, when one is available. Lookups degrade to
// empty strings when the database is missing; naming the board is cosmetic.
package usbids

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	vendors    = map[string]*Vendor{}
	vendorLine = regexp.MustCompile(`^([[:xdigit:]]{4})\s{2}(.+)$`)
	deviceLine = regexp.MustCompile(`\t([[:xdigit:]]{4})\s{2}(.+)$`)
)

type Vendor struct {
	Name    string
	ID      string
	Product map[string]*Device
}

type Device struct {
	ID   string
	Name string
}

func LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	var currVendor *Vendor

	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, `#`) {
			continue
		}
		if result := vendorLine.FindStringSubmatch(line); len(result) != 0 {
			currVendor = &Vendor{
				Name:    result[2],
				ID:      result[1],
				Product: map[string]*Device{},
			}
			vendors[currVendor.ID] = currVendor
		} else if result := deviceLine.FindStringSubmatch(line); len(result) != 0 {
			if currVendor != nil {
				currVendor.Product[result[1]] = &Device{
					ID:   result[1],
					Name: result[2],
				}
			}
		} else {
			// The class section follows the vendor list; nothing below it
			// is needed here.
			break
		}
	}
	return scanner.Err()
}

// FindDevice names a vendor/product pair, returning empty strings for
// anything the database does not know.
func FindDevice(vid, pid uint16) (string, string) {
	vendor := vendors[fmt.Sprintf("%04x", vid)]
	if vendor == nil {
		return "", ""
	}

	product := vendor.Product[fmt.Sprintf("%04x", pid)]
	if product == nil {
		return vendor.Name, ""
	}
	return vendor.Name, product.Name
}
