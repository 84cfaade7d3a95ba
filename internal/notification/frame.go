package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var keepaliveFrame = []byte(": ping\n\n")

// EncodeFrame renders payload as one event-stream message. json.Marshal
// never emits raw newlines, so a single data line is enough.
func EncodeFrame(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 8)
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}
