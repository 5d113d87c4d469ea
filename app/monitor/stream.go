package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-contrib/sse"
)

// Message is one dispatched server-sent event.
type Message struct {
	Event string
	ID    string
	Data  string
}

// EventReader splits a text/event-stream body into messages. Lines are
// collected up to the blank line that ends an event and the block is handed
// to the sse decoder, so a message is only returned once it is complete.
type EventReader struct {
	reader *bufio.Reader
}

func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{reader: bufio.NewReader(r)}
}

// Next blocks until a complete message arrives. A partial event at the end
// of the stream is dropped and io.EOF returned.
func (r *EventReader) Next() (Message, error) {
	var block strings.Builder

	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Message{}, io.EOF
			}
			return Message{}, err
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, ":") {
			continue
		}
		if line != "" {
			block.WriteString(line)
			block.WriteByte('\n')
			continue
		}
		if block.Len() == 0 {
			continue
		}

		events, err := sse.Decode(strings.NewReader(block.String()))
		block.Reset()
		if err != nil {
			return Message{}, fmt.Errorf("failed to decode event: %w", err)
		}
		if len(events) == 0 {
			continue
		}

		event := events[0]
		data, _ := event.Data.(string)
		return Message{Event: event.Event, ID: event.Id, Data: data}, nil
	}
}
