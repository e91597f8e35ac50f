// Package transport carries the newline-delimited JSON protocol over a plain
// TCP connection, which is all the game server speaks.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/protocol"
)

const dialTimeout = 10 * time.Second

// Recorder taps raw wire lines as they pass through the connection.
type Recorder interface {
	Inbound(line []byte)
	Outbound(line []byte)
}

// Conn is one live connection to the game server. Decoded events stream from
// Events; Send writes actions. The read loop runs until the server closes the
// connection or Close is called.
type Conn struct {
	logger  *slog.Logger
	conn    net.Conn
	channel *protocol.Channel
	encoder *protocol.Encoder

	closeOnce sync.Once
}

// Dial connects to the server and starts the read loop. recorder may be nil.
func Dial(ctx context.Context, logger *slog.Logger, addr string, recorder Recorder) (*Conn, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	logger = logger.With(slog.String("component", "transport"), slog.String("addr", addr))

	var w io.Writer = netConn
	if recorder != nil {
		w = io.MultiWriter(netConn, outboundTap{recorder})
	}

	c := &Conn{
		logger:  logger,
		conn:    netConn,
		channel: protocol.NewChannel(logger),
		encoder: protocol.NewEncoder(w),
	}
	go c.readLoop(recorder)
	return c, nil
}

// Events is the stream of decoded inbound events. It closes when the
// connection drops.
func (c *Conn) Events() <-chan model.Event {
	return c.channel.Events()
}

// Send writes one action to the server.
func (c *Conn) Send(action model.Action) error {
	return c.encoder.Send(action)
}

// Close tears the connection down. The event stream closes shortly after.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) readLoop(recorder Recorder) {
	defer c.channel.Close()

	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if recorder != nil {
				recorder.Inbound(trimNewline(line))
			}
			c.channel.OnBytes(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				c.logger.Warn("read loop ended", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// outboundTap adapts a Recorder into the writer chain: every write is one
// newline-terminated action line.
type outboundTap struct {
	recorder Recorder
}

func (t outboundTap) Write(p []byte) (int, error) {
	t.recorder.Outbound(trimNewline(p))
	return len(p), nil
}

func trimNewline(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
