// Package memhandle implements a memory-backed handle over a growable byte
// buffer.
package memhandle

import (
	"github.com/bytepress/bytepress/handle"
)

// Compile-time check that Handle implements handle.Handle.
var _ handle.Handle = (*Handle)(nil)

// Handle is a memory-backed handle. It is not safe for concurrent use.
type Handle struct {
	buf    []byte
	pos    int64
	mode   handle.Mode
	closed bool
}

// New creates a memory handle seeded with a copy of initial.
// ModeWrite starts with an empty buffer (truncation) and ModeAppend starts
// positioned at end-of-data, mirroring the file backend.
func New(initial []byte, mode handle.Mode) (*Handle, error) {
	if !mode.Valid() {
		return nil, handle.ErrInvalidMode
	}

	h := &Handle{mode: mode}
	if mode != handle.ModeWrite {
		h.buf = append([]byte(nil), initial...)
	}
	if mode == handle.ModeAppend {
		h.pos = int64(len(h.buf))
	}
	return h, nil
}

// Read returns up to n bytes from the current position, advancing it by the
// bytes actually returned. At or past end-of-data it returns an empty slice
// and no error.
func (h *Handle) Read(n int) ([]byte, error) {
	if h.closed {
		return nil, handle.ErrClosed
	}
	if n <= 0 || h.pos >= int64(len(h.buf)) {
		return []byte{}, nil
	}

	end := h.pos + int64(n)
	if end > int64(len(h.buf)) {
		end = int64(len(h.buf))
	}

	out := append([]byte(nil), h.buf[h.pos:end]...)
	h.pos = end
	return out, nil
}

// ReadAll returns all remaining bytes and advances the position to the end.
func (h *Handle) ReadAll() ([]byte, error) {
	if h.closed {
		return nil, handle.ErrClosed
	}
	if h.pos >= int64(len(h.buf)) {
		return []byte{}, nil
	}

	out := append([]byte(nil), h.buf[h.pos:]...)
	h.pos = int64(len(h.buf))
	return out, nil
}

// Write splices p into the buffer at the current position: bytes before the
// position and bytes past the spliced region are preserved, and the buffer
// grows when the write runs past the old end. The position advances by
// len(p).
func (h *Handle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}
	if !h.mode.Writable() {
		return 0, handle.ErrNotWritable
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := h.pos + int64(len(p))
	if end >= int64(len(h.buf)) {
		h.buf = append(h.buf[:h.pos], p...)
	} else {
		copy(h.buf[h.pos:end], p)
	}
	h.pos = end
	return len(p), nil
}

// Seek moves the position relative to whence, clamping the result into
// [0, length]. Out-of-range offsets never fail.
func (h *Handle) Seek(offset int64, whence handle.Whence) (int64, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}

	var target int64
	switch whence {
	case handle.SeekStart:
		target = offset
	case handle.SeekCurrent:
		target = h.pos + offset
	case handle.SeekEnd:
		target = int64(len(h.buf)) + offset
	default:
		return 0, handle.ErrInvalidWhence
	}

	if target < 0 {
		target = 0
	}
	if target > int64(len(h.buf)) {
		target = int64(len(h.buf))
	}
	h.pos = target
	return h.pos, nil
}

// Rewind resets the position to the start of the buffer.
func (h *Handle) Rewind() error {
	_, err := h.Seek(0, handle.SeekStart)
	return err
}

// Tell returns the current position.
func (h *Handle) Tell() (int64, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}
	return h.pos, nil
}

// Size returns the current buffer length.
func (h *Handle) Size() (int64, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}
	return int64(len(h.buf)), nil
}

// Close marks the handle closed. Closing twice is a no-op.
func (h *Handle) Close() error {
	h.closed = true
	return nil
}

// Closed reports whether the handle has been closed.
func (h *Handle) Closed() bool {
	return h.closed
}

// Bytes returns a copy of the underlying buffer. It remains available after
// Close so callers can inspect written output without reopening.
func (h *Handle) Bytes() []byte {
	return append([]byte(nil), h.buf...)
}
