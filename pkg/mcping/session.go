package mcping

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/haveachin/mcping/pkg/mcping/protocol"
)

const readBufferSize = 4096

// PingPayload is the value sent in ping requests. Most servers echo it, but
// latency measurement does not depend on that.
const PingPayload protocol.Long = 54321

// Session is one status query connection to a Java Edition server. It walks
// the handshake and status states of the protocol and never logs in.
//
// A Session owns mutable buffers and is not safe for concurrent use; callers
// must serialise calls to one Session. Independent Sessions are fine to use
// concurrently.
type Session struct {
	hostname string
	port     uint16

	conn   net.Conn
	w      *bufio.Writer
	buf    []byte
	logger *zap.Logger
}

// NewSession wraps an established connection. The hostname must be the
// string the caller supplied, not the resolved IP, since it is repeated in
// the handshake and some shared hosts key their response off it.
func NewSession(conn net.Conn, hostname string, port uint16, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		hostname: hostname,
		port:     port,
		conn:     conn,
		w:        bufio.NewWriter(conn),
		buf:      make([]byte, 0, readBufferSize),
		logger:   logger.With(logSession(hostname, port)...),
	}
}

// HandshakeFrame returns the handshake for this session's target.
func (s *Session) HandshakeFrame() protocol.Handshake {
	return protocol.Handshake{
		Protocol:  protocol.ProtocolVersion,
		Address:   protocol.String(s.hostname),
		Port:      protocol.UnsignedShort(s.port),
		NextState: protocol.NextStateStatus,
	}
}

// WriteFrame serialises f as a length-prefixed packet and flushes it.
func (s *Session) WriteFrame(f protocol.Frame) error {
	s.logger.Debug("writing frame", zap.String("frame", frameName(f)))
	if err := protocol.WriteFrame(s.w, f); err != nil {
		return err
	}
	return errors.Wrap(s.w.Flush(), "flushing frame")
}

// ReadFrame returns the next inbound frame, reading from the connection as
// needed. A clean close by the peer between frames returns (nil, nil); a
// close in the middle of a frame fails with ErrConnectionClosed.
func (s *Session) ReadFrame(d protocol.Direction) (protocol.Frame, error) {
	var chunk [readBufferSize]byte
	for {
		f, err := s.parseFrame(d)
		if err != nil {
			return nil, err
		}
		if f != nil {
			s.logger.Debug("read frame", zap.String("frame", frameName(f)))
			return f, nil
		}

		// Not enough buffered data for a frame, pull more off the wire.
		n, err := s.conn.Read(chunk[:])
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(s.buf) == 0 {
					return nil, nil
				}
				return nil, errors.WithStack(ErrConnectionClosed)
			}
			return nil, errors.Wrap(err, "reading from connection")
		}
	}
}

// parseFrame attempts to decode one frame from the inbound buffer. It
// returns (nil, nil) when the buffer does not hold a complete frame yet. On
// success the frame's bytes are discarded from the buffer.
func (s *Session) parseFrame(d protocol.Direction) (protocol.Frame, error) {
	prefixLen, bodyLen, err := protocol.CheckFrame(s.buf)
	if err != nil {
		if errors.Is(err, protocol.ErrIncomplete) {
			return nil, nil
		}
		return nil, err
	}

	f, err := protocol.ParseFrame(bytes.NewReader(s.buf[prefixLen:]), d)
	if err != nil {
		if errors.Is(err, protocol.ErrIncomplete) {
			return nil, nil
		}
		return nil, err
	}

	s.buf = s.buf[prefixLen+bodyLen:]
	return f, nil
}

// Handshake sends the handshake frame, moving the connection into the
// status state.
func (s *Session) Handshake() error {
	return s.WriteFrame(s.HandshakeFrame())
}

// GetStatus requests and decodes the server's status document.
func (s *Session) GetStatus() (*JavaServerInfo, error) {
	if err := s.WriteFrame(protocol.StatusRequest{}); err != nil {
		return nil, err
	}

	f, err := s.ReadFrame(protocol.Clientbound)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.WithStack(ErrConnectionClosed)
	}

	resp, ok := f.(protocol.StatusResponse)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidResponse, "expected status response, got %s", frameName(f))
	}
	return ParseJavaStatus(string(resp.JSON))
}

// GetLatency measures the round trip time of one ping request. The echoed
// payload is not required to match; a mismatch is logged and the latency is
// returned anyway.
func (s *Session) GetLatency() (time.Duration, error) {
	start := time.Now()

	if err := s.WriteFrame(protocol.PingRequest{Payload: PingPayload}); err != nil {
		return 0, err
	}

	f, err := s.ReadFrame(protocol.Clientbound)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, errors.WithStack(ErrConnectionClosed)
	}

	pong, ok := f.(protocol.PingResponse)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidResponse, "expected ping response, got %s", frameName(f))
	}
	if pong.Payload != PingPayload {
		s.logger.Warn("server echoed a different ping payload",
			zap.Int64("sent", int64(PingPayload)),
			zap.Int64("echoed", int64(pong.Payload)),
		)
	}
	return time.Since(start), nil
}

// Disconnect half-closes the write side and releases the connection. The
// Session must not be used afterwards.
func (s *Session) Disconnect() error {
	var err error
	if tc, ok := s.conn.(*net.TCPConn); ok {
		err = multierr.Append(err, tc.CloseWrite())
	}
	err = multierr.Append(err, s.conn.Close())
	if err != nil {
		return errors.Wrap(err, "disconnecting session")
	}
	s.logger.Debug("session disconnected")
	return nil
}

// SetDeadline bounds all pending and future session I/O.
func (s *Session) SetDeadline(t time.Time) error {
	return s.conn.SetDeadline(t)
}

func frameName(f protocol.Frame) string {
	switch f.(type) {
	case protocol.Handshake:
		return "handshake"
	case protocol.StatusRequest:
		return "status request"
	case protocol.StatusResponse:
		return "status response"
	case protocol.PingRequest:
		return "ping request"
	case protocol.PingResponse:
		return "ping response"
	default:
		return fmt.Sprintf("%T", f)
	}
}
