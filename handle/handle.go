// Package handle defines the abstract seekable byte-stream contract that
// compression algorithms are written against. A Handle hides whether the
// underlying storage is a file, an in-memory buffer, or a remote object;
// any two backends opened with the same mode over the same data must be
// observably identical for Read/Write/Seek/Tell/Close.
package handle

import (
	"errors"
	"io"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates an operation on a closed handle.
	ErrClosed = errors.New("handle: handle is closed")

	// ErrNotWritable indicates a write on a handle opened in read mode.
	ErrNotWritable = errors.New("handle: handle not open for writing")

	// ErrInvalidWhence indicates a seek with an out-of-range whence value.
	ErrInvalidWhence = errors.New("handle: invalid whence")

	// ErrInvalidMode indicates an open with an out-of-range mode value.
	ErrInvalidMode = errors.New("handle: invalid open mode")
)

// Mode controls how a handle is opened.
type Mode int

const (
	// ModeRead opens for reading only. Writes fail with ErrNotWritable.
	ModeRead Mode = iota
	// ModeWrite opens for reading and writing, truncating existing data.
	ModeWrite
	// ModeUpdate opens for reading and writing without truncation.
	ModeUpdate
	// ModeAppend opens for reading and writing, positioned at end-of-data.
	ModeAppend
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeUpdate:
		return "update"
	case ModeAppend:
		return "append"
	default:
		return "invalid"
	}
}

// Valid reports whether m is one of the defined open modes.
func (m Mode) Valid() bool {
	return m >= ModeRead && m <= ModeAppend
}

// Writable reports whether the mode permits writes.
func (m Mode) Writable() bool {
	return m != ModeRead
}

// Whence is the reference point for a Seek.
type Whence int

const (
	// SeekStart seeks relative to the start of the data.
	SeekStart Whence = iota
	// SeekCurrent seeks relative to the current position.
	SeekCurrent
	// SeekEnd seeks relative to the end of the data.
	SeekEnd
)

// String returns a human-readable name for the whence value.
func (w Whence) String() string {
	switch w {
	case SeekStart:
		return "start"
	case SeekCurrent:
		return "current"
	case SeekEnd:
		return "end"
	default:
		return "invalid"
	}
}

// Handle is an abstract seekable byte stream.
//
// Position invariant: 0 <= position <= length at all times. Seeks clamp
// out-of-range targets into [0, length] rather than failing; writes past the
// logical end extend the data, writes inside it splice-overwrite in place
// without truncating the trailing bytes the write does not cover.
type Handle interface {
	// Read returns up to n bytes from the current position and advances it
	// by the bytes actually returned. At end-of-data it returns an empty
	// slice and no error.
	Read(n int) ([]byte, error)

	// Write writes p at the current position and returns the number of
	// bytes accepted. Writing to a read-only handle fails with
	// ErrNotWritable; writing to a closed handle fails with ErrClosed.
	Write(p []byte) (int, error)

	// Seek moves the position relative to whence and returns the resulting
	// absolute position, clamped into [0, length].
	Seek(offset int64, whence Whence) (int64, error)

	// Tell returns the current absolute position.
	Tell() (int64, error)

	// Size returns the current length of the underlying data.
	Size() (int64, error)

	// Close releases the handle. Closing twice is a no-op.
	Close() error

	// Closed reports whether the handle has been closed.
	Closed() bool
}

// System opens handles. Algorithm factories receive a System so that an
// algorithm can open scratch handles without knowing the backend.
type System interface {
	// OpenFile opens a file-backed handle at path with the given mode.
	OpenFile(path string, mode Mode) (Handle, error)

	// OpenMemory opens a memory-backed handle seeded with initial bytes.
	OpenMemory(initial []byte) Handle
}

// NewReader adapts h to io.Reader. A zero-length Read from the handle maps
// to io.EOF so the adapter terminates standard library copy loops.
func NewReader(h Handle) io.Reader {
	return &reader{h: h}
}

type reader struct {
	h Handle
}

func (r *reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := r.h.Read(len(p))
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, io.EOF
	}
	return copy(p, b), nil
}

// NewWriter adapts h to io.Writer.
func NewWriter(h Handle) io.Writer {
	return &writer{h: h}
}

type writer struct {
	h Handle
}

func (w *writer) Write(p []byte) (int, error) {
	return w.h.Write(p)
}
