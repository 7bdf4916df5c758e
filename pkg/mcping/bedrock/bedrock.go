// Package bedrock queries the status of Minecraft Bedrock Edition servers
// through the RakNet unconnected ping.
package bedrock

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math/rand"
	"net"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/haveachin/mcping/pkg/mcping"
)

// ErrNoResponse signals that every ping attempt went unanswered.
var ErrNoResponse = errors.New("the server did not respond to the ping request")

const (
	unconnectedPingID byte = 0x01
	unconnectedPongID byte = 0x1c

	// Offsets within an unconnected pong datagram.
	pongTimeOffset  = 1
	pongGUIDOffset  = 9
	pongMagicOffset = 17
	pongLenOffset   = 33
	pongMOTDOffset  = 35
)

// unconnectedMagic is the fixed 128-bit constant every offline RakNet
// message carries.
var unconnectedMagic = [16]byte{
	0x00, 0xff, 0xff, 0x00, 0xfe, 0xfe, 0xfe, 0xfe,
	0xfd, 0xfd, 0xfd, 0xfd, 0x12, 0x34, 0x56, 0x78,
}

// pingFrame is the unconnected ping request.
type pingFrame struct {
	time int64
	guid int64
}

// marshal lays the request out as id, time, magic, guid: 33 bytes, sent as
// a single datagram. Note the pong reply orders guid before magic.
func (f pingFrame) marshal() []byte {
	buf := make([]byte, 33)
	buf[0] = unconnectedPingID
	binary.BigEndian.PutUint64(buf[1:9], uint64(f.time))
	copy(buf[9:25], unconnectedMagic[:])
	binary.BigEndian.PutUint64(buf[25:33], uint64(f.guid))
	return buf
}

// pongFrame is the unconnected pong reply. The server echoes the request
// time and advertises itself through the MOTD string.
type pongFrame struct {
	time int64
	motd string
}

// parsePong decodes a datagram as an unconnected pong. Datagrams that do
// not validate are reported as not ok and should be treated as noise.
func parsePong(datagram []byte) (pongFrame, bool) {
	if len(datagram) < pongMOTDOffset {
		return pongFrame{}, false
	}
	if datagram[0] != unconnectedPongID {
		return pongFrame{}, false
	}
	if !bytes.Equal(datagram[pongMagicOffset:pongLenOffset], unconnectedMagic[:]) {
		return pongFrame{}, false
	}

	motdLen := int(binary.BigEndian.Uint16(datagram[pongLenOffset:pongMOTDOffset]))
	if motdLen != len(datagram)-pongMOTDOffset {
		return pongFrame{}, false
	}

	return pongFrame{
		time: int64(binary.BigEndian.Uint64(datagram[pongTimeOffset:pongGUIDOffset])),
		motd: string(datagram[pongMOTDOffset:]),
	}, true
}

// Pinger queries Bedrock Edition servers. The zero value is ready to use.
type Pinger struct {
	// LookupHost overrides the DNS query, mainly for tests.
	LookupHost func(ctx context.Context, host string) ([]string, error)

	Dialer net.Dialer
	Logger *zap.Logger
}

// Ping sends unconnected pings to the server until one is answered, up to
// retries attempts of retryTimeout each. The total wall-clock bound is
// retryTimeout times retries. The reported latency is the difference between
// the local clock and the echoed request timestamp, so it tolerates one-way
// clock skew.
func (p *Pinger) Ping(ctx context.Context, host string, port uint16, retryTimeout time.Duration, retries int) (*ServerInfo, time.Duration, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.String("serverHost", host),
		zap.Uint16("serverPort", port),
	)

	lookupHost := p.LookupHost
	if lookupHost == nil {
		lookupHost = net.DefaultResolver.LookupHost
	}
	addrs, err := lookupHost(ctx, host)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "looking up host")
	}
	if len(addrs) == 0 {
		return nil, 0, pkgerrors.WithStack(mcping.DNSError{Address: host})
	}
	addr := net.JoinHostPort(addrs[0], strconv.Itoa(int(port)))

	conn, err := p.Dialer.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, 0, pkgerrors.Wrapf(mcping.ErrConnectFailed, "dialing %s: %v", addr, err)
	}
	defer conn.Close()
	logger.Debug("opened udp socket", zap.String("resolvedAddr", addr))

	var errs error
	for attempt := 1; attempt <= retries; attempt++ {
		logger.Debug("pinging raknet server", zap.Int("attempt", attempt))
		pong, latency, err := attemptPing(conn, retryTimeout, logger)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		info, err := ParseServerInfo(pong.motd)
		if err != nil {
			return nil, 0, err
		}
		return info, latency, nil
	}

	return nil, 0, multierr.Append(pkgerrors.WithStack(ErrNoResponse), errs)
}

// attemptPing sends one unconnected ping and waits for a valid pong until
// the per-attempt timeout elapses. Datagrams that fail validation are
// discarded without ending the attempt, so the deadline always wins against
// a stream of garbage.
func attemptPing(conn net.Conn, timeout time.Duration, logger *zap.Logger) (pongFrame, time.Duration, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return pongFrame{}, 0, pkgerrors.Wrap(err, "setting attempt deadline")
	}

	frame := pingFrame{
		time: time.Now().UnixMilli(),
		guid: rand.Int63(),
	}
	if _, err := conn.Write(frame.marshal()); err != nil {
		return pongFrame{}, 0, pkgerrors.Wrap(err, "sending unconnected ping")
	}

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return pongFrame{}, 0, pkgerrors.Wrap(err, "receiving unconnected pong")
		}

		pong, ok := parsePong(buf[:n])
		if !ok {
			logger.Debug("discarding malformed datagram", zap.Int("size", n))
			continue
		}

		latency := time.Duration(time.Now().UnixMilli()-pong.time) * time.Millisecond
		return pong, latency, nil
	}
}

// Ping queries a server with a default Pinger.
func Ping(ctx context.Context, host string, port uint16, retryTimeout time.Duration, retries int) (*ServerInfo, time.Duration, error) {
	var p Pinger
	return p.Ping(ctx, host, port, retryTimeout, retries)
}
