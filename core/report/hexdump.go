package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	offsetColor    = color.New(color.FgCyan)
	printableColor = color.New(color.FgWhite)
	rawColor       = color.New(color.FgHiBlack)
)

// HexDump renders a transfer buffer as a 16-byte-per-row hex/ASCII grid.
func HexDump(buffer []byte) string {
	var b strings.Builder

	for row := 0; row < len(buffer); row += 16 {
		end := row + 16
		if end > len(buffer) {
			end = len(buffer)
		}

		b.WriteString(offsetColor.Sprintf("%08x  ", row))
		for i := row; i < row+16; i++ {
			if i < end {
				b.WriteString(fmt.Sprintf("%02x ", buffer[i]))
			} else {
				b.WriteString("   ")
			}
			if i%16 == 7 {
				b.WriteString(" ")
			}
		}

		b.WriteString(" ")
		for i := row; i < end; i++ {
			if buffer[i] >= 0x20 && buffer[i] < 0x7F {
				b.WriteString(printableColor.Sprint(string(rune(buffer[i]))))
			} else {
				b.WriteString(rawColor.Sprint("."))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
