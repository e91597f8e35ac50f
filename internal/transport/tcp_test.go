package transport

import (
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/testutil"
)

// memoryRecorder collects tapped lines.
type memoryRecorder struct {
	mu       sync.Mutex
	inbound  []string
	outbound []string
}

func (r *memoryRecorder) Inbound(line []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inbound = append(r.inbound, string(line))
}

func (r *memoryRecorder) Outbound(line []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outbound = append(r.outbound, string(line))
}

func (r *memoryRecorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inbound...), append([]string(nil), r.outbound...)
}

type ConnSuite struct {
	suite.Suite
	listener net.Listener
	server   net.Conn
	conn     *Conn
	recorder *memoryRecorder
}

func TestConnSuite(t *testing.T) {
	suite.Run(t, new(ConnSuite))
}

func (s *ConnSuite) SetupTest() {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.listener = listener
	s.recorder = &memoryRecorder{}

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := listener.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	s.conn, err = Dial(context.Background(), testutil.NopLogger(), listener.Addr().String(), s.recorder)
	s.Require().NoError(err)

	select {
	case s.server = <-accepted:
	case <-time.After(time.Second):
		s.FailNow("server did not accept")
	}
}

func (s *ConnSuite) TearDownTest() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.server != nil {
		_ = s.server.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *ConnSuite) nextEvent() model.Event {
	select {
	case e, ok := <-s.conn.Events():
		s.Require().True(ok, "event stream closed early")
		return e
	case <-time.After(time.Second):
		s.FailNow("no event arrived")
		return nil
	}
}

func (s *ConnSuite) TestServerLinesBecomeEvents() {
	_, err := s.server.Write([]byte(`{"event":"draw","who":1}` + "\n"))
	s.Require().NoError(err)

	draw, ok := s.nextEvent().(model.DrawEvent)
	s.Require().True(ok)
	s.Equal(model.Seat(1), draw.Who)
}

func (s *ConnSuite) TestSendReachesServer() {
	s.Require().NoError(s.conn.Send(model.JoinRequest{Username: "alice"}))

	reader := bufio.NewReader(s.server)
	s.Require().NoError(s.server.SetReadDeadline(time.Now().Add(time.Second)))
	line, err := reader.ReadString('\n')
	s.Require().NoError(err)
	s.JSONEq(`{"username":"alice","observe":false}`, line)
}

func (s *ConnSuite) TestRecorderTapsBothDirections() {
	_, err := s.server.Write([]byte(`{"event":"draw","who":0}` + "\n"))
	s.Require().NoError(err)
	s.nextEvent()

	s.Require().NoError(s.conn.Send(model.QuitAction{}))

	// The inbound tap runs on the read loop goroutine; the event arriving
	// above means the line has been recorded.
	inbound, outbound := s.recorder.snapshot()
	s.Require().Len(inbound, 1)
	s.Equal(`{"event":"draw","who":0}`, inbound[0])
	s.Require().Len(outbound, 1)
	s.JSONEq(`{"event":"quit"}`, outbound[0])
}

func (s *ConnSuite) TestServerCloseEndsEventStream() {
	s.Require().NoError(s.server.Close())

	select {
	case _, ok := <-s.conn.Events():
		s.False(ok)
	case <-time.After(time.Second):
		s.FailNow("event stream did not close")
	}
}

func (s *ConnSuite) TestCloseIsIdempotent() {
	s.Require().NoError(s.conn.Close())
	s.NoError(s.conn.Close())
}
