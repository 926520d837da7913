package client

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"strings"

	"github.com/sharondevs/echo-chat/internal/model/chat"
)

// dataPrefix is the line framing the backend emits for every event.
const dataPrefix = "data: "

// Stream decodes the chat response body into discrete events. Raw reads
// arrive at arbitrary boundaries, so lines are assembled by a buffered reader
// before any parsing happens. A Stream is consumed once and not restartable.
type Stream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
}

func newStream(body io.ReadCloser) *Stream {
	return &Stream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Next returns the next decoded event. It returns io.EOF once the transport
// signals end-of-stream. Lines that are not data frames, and data frames
// whose JSON does not parse, are skipped so one bad event cannot poison the
// rest of the stream.
func (s *Stream) Next() (chat.StreamEvent, error) {
	if s.done {
		return chat.StreamEvent{}, io.EOF
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				s.done = true
				// A final frame may arrive without a trailing newline.
				if event, ok := parseEventLine(line); ok {
					return event, nil
				}
				return chat.StreamEvent{}, io.EOF
			}
			s.done = true
			return chat.StreamEvent{}, err
		}

		if event, ok := parseEventLine(line); ok {
			return event, nil
		}
	}
}

// Close releases the underlying response body. Safe to call at any point;
// further Next calls return io.EOF.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}

func parseEventLine(line string) (chat.StreamEvent, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, dataPrefix) {
		// Heartbeat comments, blank separators and unknown fields are fine to
		// drop without logging.
		return chat.StreamEvent{}, false
	}

	payload := line[len(dataPrefix):]
	var event chat.StreamEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("[stream] dropping malformed event line: %v", err)
		return chat.StreamEvent{}, false
	}
	return event, true
}
