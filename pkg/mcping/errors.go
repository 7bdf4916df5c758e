package mcping

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionClosed signals that the peer closed the connection in
	// the middle of a frame or before a required response arrived.
	ErrConnectionClosed = errors.New("connection closed unexpectedly")

	// ErrInvalidResponse signals that a high-level helper received a frame
	// of an unexpected variant.
	ErrInvalidResponse = errors.New("received unexpected frame")

	// ErrConnectFailed signals that the TCP connect to a resolved address
	// failed.
	ErrConnectFailed = errors.New("failed to connect to server")
)

// DNSError is returned when an address resolves to no usable hosts.
type DNSError struct {
	Address string
}

func (e DNSError) Error() string {
	return fmt.Sprintf("dns lookup failed for address %q", e.Address)
}
