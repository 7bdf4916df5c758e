package protocol

import (
	"io"
	"math"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// A Field is both FieldEncoder and FieldDecoder.
type Field interface {
	FieldEncoder
	FieldDecoder
}

// A FieldEncoder can be encoded as minecraft protocol used.
type FieldEncoder io.WriterTo

// A FieldDecoder can Decode from minecraft protocol.
type FieldDecoder io.ReaderFrom

type (
	// VarInt is variable-length data encoding a two's complement signed 32-bit integer.
	VarInt int32

	// String is a sequence of Unicode scalar values, prefixed by its byte
	// length as a VarInt.
	String string

	// UnsignedShort is an unsigned 16-bit integer, big-endian.
	UnsignedShort uint16

	// Long is a signed 64-bit integer, two's complement, big-endian.
	Long int64
)

// MaxVarIntLen is the longest wire form of a VarInt.
const MaxVarIntLen = 5

func (v VarInt) WriteTo(w io.Writer) (int64, error) {
	var vi [MaxVarIntLen]byte
	num := uint32(v)
	i := 0
	for {
		b := num & 0x7F
		num >>= 7
		if num != 0 {
			b |= 0x80
		}
		vi[i] = byte(b)
		i++
		if num == 0 {
			break
		}
	}
	n, err := w.Write(vi[:i])
	return int64(n), err
}

func (v *VarInt) ReadFrom(r io.Reader) (int64, error) {
	var vi uint32
	var n int64
	for i := 0; ; i++ {
		nn, sec, err := readByte(r)
		n += nn
		if err != nil {
			return n, incomplete(err)
		}

		vi |= uint32(sec&0x7F) << (7 * i)
		if sec&0x80 == 0 {
			break
		}
		if i == MaxVarIntLen-1 {
			return n, errors.Wrap(ErrInvalidFormat, "VarInt continues past 5 bytes")
		}
	}
	*v = VarInt(vi)
	return n, nil
}

// Len returns the number of bytes required to encode the VarInt.
func (v VarInt) Len() int {
	switch {
	case v < 0:
		return MaxVarIntLen
	case v < 1<<(7*1):
		return 1
	case v < 1<<(7*2):
		return 2
	case v < 1<<(7*3):
		return 3
	case v < 1<<(7*4):
		return 4
	default:
		return 5
	}
}

func (s String) WriteTo(w io.Writer) (int64, error) {
	byteStr := []byte(s)
	if len(byteStr) > math.MaxInt32 {
		return 0, errors.Wrapf(ErrStringTooLong, "%d bytes", len(byteStr))
	}
	n1, err := VarInt(len(byteStr)).WriteTo(w)
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(byteStr)
	return n1 + int64(n2), err
}

func (s *String) ReadFrom(r io.Reader) (int64, error) {
	var l VarInt // String length

	n, err := l.ReadFrom(r)
	if err != nil {
		return n, err
	}
	if l < 0 {
		return n, errors.Wrapf(ErrInvalidFormat, "negative string length %d", l)
	}

	bs := make([]byte, l)
	nn, err := io.ReadFull(r, bs)
	n += int64(nn)
	if err != nil {
		return n, errors.Wrapf(ErrInvalidFormat, "%d of %d string bytes buffered", nn, l)
	}
	if !utf8.Valid(bs) {
		return n, errors.Wrap(ErrInvalidFormat, "string is not valid UTF-8")
	}

	*s = String(bs)
	return n, nil
}

func (us UnsignedShort) WriteTo(w io.Writer) (int64, error) {
	n := uint16(us)
	nn, err := w.Write([]byte{byte(n >> 8), byte(n)})
	return int64(nn), err
}

func (us *UnsignedShort) ReadFrom(r io.Reader) (int64, error) {
	var bs [2]byte
	nn, err := io.ReadFull(r, bs[:])
	if err != nil {
		return int64(nn), incomplete(err)
	}

	*us = UnsignedShort(uint16(bs[0])<<8 | uint16(bs[1]))
	return int64(nn), nil
}

func (l Long) WriteTo(w io.Writer) (int64, error) {
	n := uint64(l)
	nn, err := w.Write([]byte{
		byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
	})
	return int64(nn), err
}

func (l *Long) ReadFrom(r io.Reader) (int64, error) {
	var bs [8]byte
	nn, err := io.ReadFull(r, bs[:])
	if err != nil {
		return int64(nn), incomplete(err)
	}

	*l = Long(uint64(bs[0])<<56 | uint64(bs[1])<<48 | uint64(bs[2])<<40 | uint64(bs[3])<<32 |
		uint64(bs[4])<<24 | uint64(bs[5])<<16 | uint64(bs[6])<<8 | uint64(bs[7]))
	return int64(nn), nil
}

// readByte reads one byte from io.Reader.
func readByte(r io.Reader) (int64, byte, error) {
	if r, ok := r.(io.ByteReader); ok {
		v, err := r.ReadByte()
		return 1, v, err
	}
	var v [1]byte
	n, err := r.Read(v[:])
	return int64(n), v[0], err
}

// incomplete converts an end-of-buffer condition into ErrIncomplete so that
// callers can refill and retry. Other errors pass through with a stack.
func incomplete(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.WithStack(ErrIncomplete)
	}
	return errors.WithStack(err)
}
