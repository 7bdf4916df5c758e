package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete signals that the buffer does not yet hold enough bytes
	// for the operation. Callers should read more data and retry.
	ErrIncomplete = errors.New("incomplete frame data")

	// ErrInvalidLength signals a frame with a negative declared length.
	ErrInvalidLength = errors.New("invalid frame length")

	// ErrInvalidFormat signals a malformed string field.
	ErrInvalidFormat = errors.New("invalid string format")

	// ErrStringTooLong signals a string whose byte length does not fit
	// into a VarInt.
	ErrStringTooLong = errors.New("string is too long")

	// ErrFrameTooLong signals a frame body longer than a VarInt can prefix.
	ErrFrameTooLong = errors.New("frame is too long")
)

// InvalidFrameError is returned when a packet id has no frame mapping for
// the direction it was received from.
type InvalidFrameError struct {
	ID        int32
	Direction Direction
}

func (e InvalidFrameError) Error() string {
	return fmt.Sprintf("invalid frame id %#02x for direction %s", e.ID, e.Direction)
}
