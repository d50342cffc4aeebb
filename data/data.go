package data

import (
	"time"
)

// Direction of a bulk transfer relative to the host.
type Direction string

const (
	DirOut Direction = "out"
	DirIn  Direction = "in"
)

// TransferRecord is one protocol action as seen on the wire, kept for the
// session report.
type TransferRecord struct {
	Time      time.Time `json:"time" xml:"time"`
	Operation string    `json:"operation" xml:"operation"`
	Role      string    `json:"role" xml:"role"`
	Direction Direction `json:"direction" xml:"direction"`
	Length    int       `json:"length" xml:"length"`
	Note      string    `json:"note,omitempty" xml:"note,omitempty"`
}

// DeviceInfo describes the attached control board.
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Bus          int
	Address      int
	Speed        string
	Manufacturer string
	Product      string
	Serial       string
}
