package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// eventBuffer bounds how many decoded events may sit unconsumed before
// OnBytes blocks. The dispatcher drains promptly even while a user decision
// is pending, so this is ample.
const eventBuffer = 64

// Channel reassembles arbitrarily chunked transport bytes into
// newline-delimited messages and decodes each into a typed event. A line that
// fails to decode is logged and dropped; the stream stays usable.
type Channel struct {
	logger *slog.Logger
	buf    bytes.Buffer
	events chan model.Event
}

// NewChannel creates a message channel.
func NewChannel(logger *slog.Logger) *Channel {
	return &Channel{
		logger: logger.With(slog.String("component", "protocol-channel")),
		events: make(chan model.Event, eventBuffer),
	}
}

// Events is the stream of decoded inbound events, in arrival order.
func (c *Channel) Events() <-chan model.Event {
	return c.events
}

// OnBytes appends a transport chunk to the reassembly buffer and emits an
// event for every complete line now available. Chunks may hold partial lines
// or several lines at once.
func (c *Channel) OnBytes(chunk []byte) {
	c.buf.Write(chunk)
	for {
		data := c.buf.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return
		}
		line := make([]byte, idx)
		copy(line, data[:idx])
		c.buf.Next(idx + 1)

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		event, err := Decode(line)
		if err != nil {
			c.logger.Warn("dropping undecodable line",
				slog.String("line", string(line)),
				slog.String("error", err.Error()),
			)
			continue
		}
		c.events <- event
	}
}

// Close ends the event stream. Call after the transport reports EOF.
func (c *Channel) Close() {
	close(c.events)
}

// Encoder serializes outbound actions, one JSON object per line.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEncoder creates an encoder writing to the transport.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Send writes one action as a single newline-terminated JSON line. The event
// discriminator is injected from the action's kind; the join request is sent
// bare, as the server expects.
func (e *Encoder) Send(action model.Action) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encoding action: %w", err)
	}

	if kind := action.ActionKind(); kind != "" {
		var fields map[string]any
		if err := json.Unmarshal(payload, &fields); err != nil {
			return fmt.Errorf("encoding action: %w", err)
		}
		fields["event"] = kind
		if payload, err = json.Marshal(fields); err != nil {
			return fmt.Errorf("encoding action: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("writing action: %w", err)
	}
	return nil
}
