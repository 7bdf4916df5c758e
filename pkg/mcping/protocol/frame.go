package protocol

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Packet ids of the handshake and status states. The same numeric id decodes
// to a different frame depending on the direction it travels in, so the
// parser must be told which direction it is reading.
const (
	IDHandshake      VarInt = 0x00
	IDStatusRequest  VarInt = 0x00
	IDStatusResponse VarInt = 0x00
	IDPingRequest    VarInt = 0x01
	IDPingResponse   VarInt = 0x01
)

// ProtocolVersion is the protocol number sent in the handshake. Status
// queries work against servers of any version regardless of this value.
const ProtocolVersion VarInt = 767

// NextStateStatus is the handshake next-state field for the status state.
const NextStateStatus VarInt = 1

// Direction selects which frame mapping the parser uses for inbound packet
// ids.
type Direction int

const (
	// Clientbound decodes frames sent by a server to a client.
	Clientbound Direction = iota
	// ServerboundHandshake decodes frames sent to a server in the
	// handshake state.
	ServerboundHandshake
	// ServerboundStatus decodes frames sent to a server in the status
	// state.
	ServerboundStatus
)

func (d Direction) String() string {
	switch d {
	case Clientbound:
		return "clientbound"
	case ServerboundHandshake:
		return "serverbound/handshake"
	case ServerboundStatus:
		return "serverbound/status"
	default:
		return "unknown"
	}
}

// A Frame is one logical protocol message, distinct from the TCP segments it
// travels in.
type Frame interface {
	// MarshalBody writes the packet body, id included, without the
	// leading length prefix.
	MarshalBody(w io.Writer) error
}

// Handshake switches the connection into the state named by NextState.
type Handshake struct {
	Protocol  VarInt
	Address   String
	Port      UnsignedShort
	NextState VarInt
}

func (f Handshake) MarshalBody(w io.Writer) error {
	return writeFields(w, IDHandshake, f.Protocol, f.Address, f.Port, f.NextState)
}

// StatusRequest asks the server for its status document. The body is empty.
type StatusRequest struct{}

func (f StatusRequest) MarshalBody(w io.Writer) error {
	return writeFields(w, IDStatusRequest)
}

// StatusResponse carries the status document as a JSON string.
type StatusResponse struct {
	JSON String
}

func (f StatusResponse) MarshalBody(w io.Writer) error {
	return writeFields(w, IDStatusResponse, f.JSON)
}

// PingRequest carries an arbitrary payload the server is expected to echo.
type PingRequest struct {
	Payload Long
}

func (f PingRequest) MarshalBody(w io.Writer) error {
	return writeFields(w, IDPingRequest, f.Payload)
}

// PingResponse echoes the payload of a PingRequest.
type PingResponse struct {
	Payload Long
}

func (f PingResponse) MarshalBody(w io.Writer) error {
	return writeFields(w, IDPingResponse, f.Payload)
}

func writeFields(w io.Writer, id VarInt, fields ...FieldEncoder) error {
	if _, err := id.WriteTo(w); err != nil {
		return err
	}
	for i, f := range fields {
		if _, err := f.WriteTo(w); err != nil {
			return errors.Wrapf(err, "writing frame field[%d]", i)
		}
	}
	return nil
}

func scanFields(r io.Reader, fields ...FieldDecoder) error {
	for i, f := range fields {
		if _, err := f.ReadFrom(r); err != nil {
			return errors.Wrapf(err, "scanning frame field[%d]", i)
		}
	}
	return nil
}

// WriteFrame serialises f as a length-prefixed packet into w. The prefix
// counts the id and all body fields.
func WriteFrame(w io.Writer, f Frame) error {
	var body bytes.Buffer
	if err := f.MarshalBody(&body); err != nil {
		return err
	}
	if body.Len() > math.MaxInt32 {
		return errors.WithStack(ErrFrameTooLong)
	}
	if _, err := VarInt(body.Len()).WriteTo(w); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// CheckFrame is a non-consuming readiness probe. It reports the length of
// the leading VarInt prefix and of the declared frame body when buf holds at
// least one complete frame. It fails with ErrIncomplete when more bytes are
// needed and with ErrInvalidLength on a negative declared length.
//
// After a successful parse the caller must discard exactly prefixLen+bodyLen
// bytes from its buffer.
func CheckFrame(buf []byte) (prefixLen, bodyLen int, err error) {
	r := bytes.NewReader(buf)

	var length VarInt
	if _, err := length.ReadFrom(r); err != nil {
		return 0, 0, err
	}
	if length < 0 {
		return 0, 0, errors.Wrapf(ErrInvalidLength, "declared length %d", length)
	}

	prefixLen = len(buf) - r.Len()
	if len(buf) < prefixLen+int(length) {
		return 0, 0, errors.Wrapf(ErrIncomplete, "%d of %d frame bytes buffered", len(buf), prefixLen+int(length))
	}
	return prefixLen, int(length), nil
}

// ParseFrame decodes one frame body from r, which must be positioned just
// past the length prefix, as left by CheckFrame. The direction disambiguates
// colliding packet ids; content-based guessing is deliberately not attempted.
func ParseFrame(r io.Reader, d Direction) (Frame, error) {
	var id VarInt
	if _, err := id.ReadFrom(r); err != nil {
		return nil, err
	}

	switch d {
	case ServerboundHandshake:
		if id == IDHandshake {
			var f Handshake
			if err := scanFields(r, &f.Protocol, &f.Address, &f.Port, &f.NextState); err != nil {
				return nil, err
			}
			return f, nil
		}
	case ServerboundStatus:
		switch id {
		case IDStatusRequest:
			return StatusRequest{}, nil
		case IDPingRequest:
			var f PingRequest
			if err := scanFields(r, &f.Payload); err != nil {
				return nil, err
			}
			return f, nil
		}
	case Clientbound:
		switch id {
		case IDStatusResponse:
			var f StatusResponse
			if err := scanFields(r, &f.JSON); err != nil {
				return nil, err
			}
			return f, nil
		case IDPingResponse:
			var f PingResponse
			if err := scanFields(r, &f.Payload); err != nil {
				return nil, err
			}
			return f, nil
		}
	}

	return nil, errors.WithStack(InvalidFrameError{ID: int32(id), Direction: d})
}
