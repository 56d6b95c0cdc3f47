package tabqwire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame. Result tables can be large, but a
// bigger frame is a protocol violation, not data.
const MaxFrameSize = 32 << 20

var (
	ErrFrameTooLarge = errors.New("tabqwire: frame exceeds size limit")
	ErrEmptyFrame    = errors.New("tabqwire: empty frame")
)

// ReadFrame reads one length-prefixed JSON frame into v. The size limit is
// enforced before the body is allocated.
func ReadFrame(r io.Reader, v any) error {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	size := binary.BigEndian.Uint32(hdr[:])
	switch {
	case size == 0:
		return ErrEmptyFrame
	case size > MaxFrameSize:
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("tabqwire: decode frame: %w", err)
	}
	return nil
}

// WriteFrame writes v as one length-prefixed JSON frame. Header and body go
// out in a single Write so concurrent writers on the same connection cannot
// interleave half a frame.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("tabqwire: encode frame: %w", err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}

	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)
	_, err = w.Write(frame)
	return err
}
