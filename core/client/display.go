package client

import (
	"bytes"
)

// DisplayString renders a transfer buffer for the console: the content up
// to the first NUL, or the whole buffer when the transfer carried no
// terminator. Length-trimmed log chunks arrive without one and must keep
// every byte.
func DisplayString(buffer []byte) string {
	if i := bytes.IndexByte(buffer, 0); i >= 0 {
		return string(buffer[:i])
	}
	return string(buffer)
}
