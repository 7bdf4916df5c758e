// Package mcping queries the status of Minecraft Java Edition servers over
// the Server List Ping sub-protocol. The companion package bedrock does the
// same for Bedrock Edition servers over the RakNet unconnected ping.
package mcping

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Pinger queries Java Edition servers. The zero value is ready to use.
type Pinger struct {
	Resolver Resolver
	Dialer   net.Dialer
	Logger   *zap.Logger
}

// Connect resolves host and opens a status session to it. The caller owns
// the session and must Disconnect it.
func (p *Pinger) Connect(ctx context.Context, host string, port uint16) (*Session, error) {
	logger := p.logger()

	addr, err := p.Resolver.Resolve(ctx, host, port)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved server address", logAddr(addr)...)

	conn, err := p.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(ErrConnectFailed, "dialing %s: %v", addr, err)
	}
	logger.Debug("connected to server", logAddr(addr)...)

	return NewSession(conn, host, port, p.Logger), nil
}

// Ping queries the server's status document and latency over one session.
// The Java path has no internal timeout; bound it through ctx or use
// PingTimeout.
func (p *Pinger) Ping(ctx context.Context, host string, port uint16) (*JavaServerInfo, time.Duration, error) {
	return p.ping(ctx, host, port, time.Time{})
}

// PingTimeout is Ping bounded by a deadline covering resolution, connect,
// and every read and write of the session.
func (p *Pinger) PingTimeout(host string, port uint16, timeout time.Duration) (*JavaServerInfo, time.Duration, error) {
	deadline := time.Now().Add(timeout)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	return p.ping(ctx, host, port, deadline)
}

func (p *Pinger) ping(ctx context.Context, host string, port uint16, deadline time.Time) (*JavaServerInfo, time.Duration, error) {
	session, err := p.Connect(ctx, host, port)
	if err != nil {
		return nil, 0, err
	}
	defer session.Disconnect()

	if !deadline.IsZero() {
		if err := session.SetDeadline(deadline); err != nil {
			return nil, 0, errors.Wrap(err, "setting session deadline")
		}
	}

	if err := session.Handshake(); err != nil {
		return nil, 0, err
	}
	info, err := session.GetStatus()
	if err != nil {
		return nil, 0, err
	}
	latency, err := session.GetLatency()
	if err != nil {
		return nil, 0, err
	}
	return info, latency, nil
}

func (p *Pinger) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Connect opens a status session with a default Pinger.
func Connect(ctx context.Context, host string, port uint16) (*Session, error) {
	var p Pinger
	return p.Connect(ctx, host, port)
}

// Ping queries a server with a default Pinger.
func Ping(ctx context.Context, host string, port uint16) (*JavaServerInfo, time.Duration, error) {
	var p Pinger
	return p.Ping(ctx, host, port)
}

// PingTimeout queries a server with a default Pinger, bounded by timeout.
func PingTimeout(host string, port uint16, timeout time.Duration) (*JavaServerInfo, time.Duration, error) {
	var p Pinger
	return p.PingTimeout(host, port, timeout)
}
