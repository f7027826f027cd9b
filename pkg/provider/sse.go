package provider

import (
	"bufio"
	"bytes"
	"io"
)

// SSEReader parses server-sent events from a completion stream.
type SSEReader struct {
	reader *bufio.Reader
}

func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReader(r)}
}

// ReadData returns the data payload of the next SSE event. Comment lines and
// non-data fields are skipped. Returns io.EOF when the stream ends.
func (s *SSEReader) ReadData() ([]byte, error) {
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line terminates the event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// event:, id:, retry: and comments are ignored.
	}
}
