// Package filehandle implements a file-backed handle over os.File.
package filehandle

import (
	"fmt"
	"io"
	"os"

	"github.com/bytepress/bytepress/handle"
)

// Compile-time check that Handle implements handle.Handle.
var _ handle.Handle = (*Handle)(nil)

// Handle is a file-backed handle. It is not safe for concurrent use.
type Handle struct {
	f      *os.File
	mode   handle.Mode
	closed bool
}

// Open opens the file at path with the given mode. Writable modes open the
// file read-write so that ModeWrite and ModeUpdate allow both directions;
// ModeAppend additionally starts positioned at end-of-data.
func Open(path string, mode handle.Mode) (*Handle, error) {
	flags, err := openFlags(mode)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	h := &Handle{f: f, mode: mode}
	if mode == handle.ModeAppend {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, fmt.Errorf("seeking to end of %s: %w", path, err)
		}
	}
	return h, nil
}

func openFlags(mode handle.Mode) (int, error) {
	switch mode {
	case handle.ModeRead:
		return os.O_RDONLY, nil
	case handle.ModeWrite:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
	case handle.ModeUpdate:
		return os.O_RDWR | os.O_CREATE, nil
	case handle.ModeAppend:
		return os.O_RDWR | os.O_CREATE | os.O_APPEND, nil
	default:
		return 0, handle.ErrInvalidMode
	}
}

// Read returns up to n bytes from the current position. Short reads happen
// only at end-of-file; at end-of-file it returns an empty slice and no error.
func (h *Handle) Read(n int) ([]byte, error) {
	if h.closed {
		return nil, handle.ErrClosed
	}
	if n <= 0 {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	read, err := io.ReadFull(h.f, buf)
	switch err {
	case nil:
		return buf, nil
	case io.EOF:
		return []byte{}, nil
	case io.ErrUnexpectedEOF:
		return buf[:read], nil
	default:
		return nil, fmt.Errorf("reading: %w", err)
	}
}

// Write writes p at the current position.
func (h *Handle) Write(p []byte) (int, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}
	if !h.mode.Writable() {
		return 0, handle.ErrNotWritable
	}

	n, err := h.f.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing: %w", err)
	}
	return n, nil
}

// Seek moves the position relative to whence, clamping the target into
// [0, size] so the file backend matches the memory backend observably.
func (h *Handle) Seek(offset int64, whence handle.Whence) (int64, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}

	size, err := h.Size()
	if err != nil {
		return 0, err
	}

	var target int64
	switch whence {
	case handle.SeekStart:
		target = offset
	case handle.SeekCurrent:
		cur, err := h.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, fmt.Errorf("seeking: %w", err)
		}
		target = cur + offset
	case handle.SeekEnd:
		target = size + offset
	default:
		return 0, handle.ErrInvalidWhence
	}

	if target < 0 {
		target = 0
	}
	if target > size {
		target = size
	}

	pos, err := h.f.Seek(target, io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("seeking: %w", err)
	}
	return pos, nil
}

// Tell returns the current position.
func (h *Handle) Tell() (int64, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}
	pos, err := h.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("seeking: %w", err)
	}
	return pos, nil
}

// Size returns the current file length.
func (h *Handle) Size() (int64, error) {
	if h.closed {
		return 0, handle.ErrClosed
	}
	info, err := h.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}
	return info.Size(), nil
}

// Flush forces pending writes to storage. Flushing a closed handle is a
// no-op.
func (h *Handle) Flush() error {
	if h.closed || !h.mode.Writable() {
		return nil
	}
	if err := h.f.Sync(); err != nil {
		return fmt.Errorf("syncing: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the file. Closing twice is a
// no-op.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	if h.mode.Writable() {
		if err := h.f.Sync(); err != nil {
			h.closed = true
			h.f.Close()
			return fmt.Errorf("syncing: %w", err)
		}
	}
	h.closed = true
	if err := h.f.Close(); err != nil {
		return fmt.Errorf("closing: %w", err)
	}
	return nil
}

// Closed reports whether the handle has been closed.
func (h *Handle) Closed() bool {
	return h.closed
}
