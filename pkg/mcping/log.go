package mcping

import (
	"go.uber.org/zap"
)

// Utility functions for consistent log fields across the library.

func logSession(hostname string, port uint16) []zap.Field {
	return []zap.Field{
		zap.String("serverHost", hostname),
		zap.Uint16("serverPort", port),
	}
}

func logAddr(addr string) []zap.Field {
	return []zap.Field{
		zap.String("resolvedAddr", addr),
	}
}
