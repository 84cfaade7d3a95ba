package notifyclient

import (
	"bufio"
	"bytes"
	"io"
)

const maxFrameSize = 1 << 20

// FrameReader splits an event stream into data payloads. Comment lines
// and fields other than data are dropped; a blank line ends a frame.
type FrameReader struct {
	scanner *bufio.Scanner
}

func NewFrameReader(r io.Reader) *FrameReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxFrameSize)
	return &FrameReader{scanner: s}
}

// Next returns the next frame's data, joining multiple data lines with a
// newline. A frame cut off by the end of the stream is discarded.
func (f *FrameReader) Next() ([]byte, error) {
	var data [][]byte
	for f.scanner.Scan() {
		line := bytes.TrimSuffix(f.scanner.Bytes(), []byte("\r"))

		if len(line) == 0 {
			if len(data) == 0 {
				continue
			}
			return bytes.Join(data, []byte("\n")), nil
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		data = append(data, append([]byte(nil), value...))
	}
	if err := f.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
