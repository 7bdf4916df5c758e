package mcping

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Resolver turns a hostname and port into a dialable socket address. Java
// servers advertise themselves through SRV records, so the hostname is first
// looked up as _minecraft._tcp.<host> and, on a hit, the record's target
// substitutes the host before the A/AAAA lookup. SRV misses and failures
// fall back to the original host. Only the first resolved address is used.
//
// The zero value resolves through net.DefaultResolver.
type Resolver struct {
	// LookupSRV and LookupHost override the DNS queries, mainly for tests.
	LookupSRV  func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error)
	LookupHost func(ctx context.Context, host string) ([]string, error)

	Logger *zap.Logger
}

func (r *Resolver) Resolve(ctx context.Context, host string, port uint16) (string, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lookupSRV := r.LookupSRV
	if lookupSRV == nil {
		lookupSRV = net.DefaultResolver.LookupSRV
	}
	lookupHost := r.LookupHost
	if lookupHost == nil {
		lookupHost = net.DefaultResolver.LookupHost
	}

	if _, records, err := lookupSRV(ctx, "minecraft", "tcp", host); err == nil && len(records) > 0 {
		target := strings.TrimSuffix(records[0].Target, ".")
		logger.Debug("found SRV record",
			zap.String("serverHost", host),
			zap.String("srvTarget", target),
		)
		host = target
	}

	addrs, err := lookupHost(ctx, host)
	if err != nil {
		return "", errors.Wrap(err, "looking up host")
	}
	if len(addrs) == 0 {
		return "", errors.WithStack(DNSError{Address: host})
	}

	return net.JoinHostPort(addrs[0], strconv.Itoa(int(port))), nil
}
