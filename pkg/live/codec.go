package live

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxStringLen bounds decoded strings so a corrupt length cannot allocate
// without limit
const maxStringLen = 1 << 20

var (
	// ErrShortFrame is returned for an empty frame
	ErrShortFrame = errors.New("frame too short")
	// ErrFrameType is returned when a frame has an unexpected type byte
	ErrFrameType = errors.New("unexpected frame type")
)

// Encoder writes live protocol primitives. The first write error sticks
// and is returned by Err.
type Encoder struct {
	w   io.Writer
	err error
}

// NewEncoder creates a new encoder
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteByte writes a single byte
func (e *Encoder) WriteByte(b byte) error {
	return e.write([]byte{b})
}

// WriteUvarint writes an unsigned varint
func (e *Encoder) WriteUvarint(v uint64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, v)
	return e.write(buf[:n])
}

// WriteString writes a length-prefixed string
func (e *Encoder) WriteString(s string) error {
	if err := e.WriteUvarint(uint64(len(s))); err != nil {
		return err
	}
	return e.write([]byte(s))
}

// Err returns the first write error
func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) write(b []byte) error {
	if e.err != nil {
		return e.err
	}
	_, e.err = e.w.Write(b)
	return e.err
}

// Decoder reads live protocol primitives
type Decoder struct {
	r *bytes.Reader
}

// NewDecoder creates a decoder over a complete frame
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(data)}
}

// ReadByte reads one byte
func (d *Decoder) ReadByte() (byte, error) {
	return d.r.ReadByte()
}

// ReadUvarint reads an unsigned varint
func (d *Decoder) ReadUvarint() (uint64, error) {
	return binary.ReadUvarint(d.r)
}

// ReadString reads a length-prefixed string
func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > maxStringLen || n > uint64(d.r.Len()) {
		return "", fmt.Errorf("string length %d: %w", n, io.ErrUnexpectedEOF)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// EncodeRule encodes a FrameRule
func EncodeRule(r Rule) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteByte(byte(FrameRule))
	enc.WriteUvarint(uint64(r.Index))
	enc.WriteString(r.Sheet)
	enc.WriteString(r.CSS)
	return buf.Bytes()
}

// EncodeControl encodes a FrameControl. HELLO carries index.
func EncodeControl(c Control) []byte {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.WriteByte(byte(FrameControl))
	enc.WriteString(c.Name)
	if c.Name == ControlHello {
		enc.WriteUvarint(uint64(c.Index))
	}
	return buf.Bytes()
}

// FrameType returns the type byte of a frame
func FrameType(data []byte) (MessageType, error) {
	if len(data) == 0 {
		return 0, ErrShortFrame
	}
	return MessageType(data[0]), nil
}

// DecodeRule decodes a FrameRule
func DecodeRule(data []byte) (Rule, error) {
	if err := expect(data, FrameRule); err != nil {
		return Rule{}, err
	}

	d := NewDecoder(data[1:])
	index, err := d.ReadUvarint()
	if err != nil {
		return Rule{}, fmt.Errorf("rule index: %w", err)
	}
	sheet, err := d.ReadString()
	if err != nil {
		return Rule{}, fmt.Errorf("rule sheet: %w", err)
	}
	css, err := d.ReadString()
	if err != nil {
		return Rule{}, fmt.Errorf("rule css: %w", err)
	}
	return Rule{Index: int(index), Sheet: sheet, CSS: css}, nil
}

// DecodeControl decodes a FrameControl
func DecodeControl(data []byte) (Control, error) {
	if err := expect(data, FrameControl); err != nil {
		return Control{}, err
	}

	d := NewDecoder(data[1:])
	name, err := d.ReadString()
	if err != nil {
		return Control{}, fmt.Errorf("control name: %w", err)
	}

	c := Control{Name: name}
	if name == ControlHello {
		index, err := d.ReadUvarint()
		if err != nil {
			return Control{}, fmt.Errorf("hello index: %w", err)
		}
		c.Index = int(index)
	}
	return c, nil
}

func expect(data []byte, want MessageType) error {
	got, err := FrameType(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("got 0x%02x, want 0x%02x: %w", got, want, ErrFrameType)
	}
	return nil
}
