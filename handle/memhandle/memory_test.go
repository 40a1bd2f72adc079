package memhandle

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bytepress/bytepress/handle"
)

func mustNew(t *testing.T, initial []byte, mode handle.Mode) *Handle {
	t.Helper()
	h, err := New(initial, mode)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h
}

func TestNew_InvalidMode(t *testing.T) {
	if _, err := New(nil, handle.Mode(42)); !errors.Is(err, handle.ErrInvalidMode) {
		t.Errorf("New() error = %v, want ErrInvalidMode", err)
	}
}

func TestNew_CopiesInitial(t *testing.T) {
	initial := []byte("abc")
	h := mustNew(t, initial, handle.ModeUpdate)

	initial[0] = 'X'
	if got := h.Bytes(); !bytes.Equal(got, []byte("abc")) {
		t.Errorf("Bytes() = %q, want %q after caller mutation", got, "abc")
	}
}

func TestNew_WriteModeTruncates(t *testing.T) {
	h := mustNew(t, []byte("existing"), handle.ModeWrite)

	size, err := h.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 0 {
		t.Errorf("Size() = %d, want 0 after truncating open", size)
	}
}

func TestNew_AppendStartsAtEnd(t *testing.T) {
	h := mustNew(t, []byte("abc"), handle.ModeAppend)

	pos, err := h.Tell()
	if err != nil {
		t.Fatalf("Tell() error = %v", err)
	}
	if pos != 3 {
		t.Errorf("Tell() = %d, want 3", pos)
	}

	if _, err := h.Write([]byte("def")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := h.Bytes(); !bytes.Equal(got, []byte("abcdef")) {
		t.Errorf("Bytes() = %q, want %q", got, "abcdef")
	}
}

func TestRead_AdvancesCursor(t *testing.T) {
	h := mustNew(t, []byte("Hello, World!"), handle.ModeRead)

	got, err := h.Read(5)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "Hello" {
		t.Errorf("Read(5) = %q, want %q", got, "Hello")
	}

	got, err = h.Read(5)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != ", Wor" {
		t.Errorf("second Read(5) = %q, want %q", got, ", Wor")
	}
}

func TestRead_ClampsToEnd(t *testing.T) {
	h := mustNew(t, []byte("abc"), handle.ModeRead)

	got, err := h.Read(100)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("Read(100) = %q, want %q", got, "abc")
	}
}

func TestRead_AtEndReturnsEmpty(t *testing.T) {
	h := mustNew(t, []byte("abc"), handle.ModeRead)
	if _, err := h.Read(3); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	got, err := h.Read(1)
	if err != nil {
		t.Fatalf("Read() at end error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read() at end = %q, want empty", got)
	}
}

func TestReadAll(t *testing.T) {
	h := mustNew(t, []byte("Hello, World!"), handle.ModeRead)
	if _, err := h.Read(7); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	got, err := h.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != "World!" {
		t.Errorf("ReadAll() = %q, want %q", got, "World!")
	}

	got, err = h.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() at end error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadAll() at end = %q, want empty", got)
	}
}

func TestWrite_Appends(t *testing.T) {
	h := mustNew(t, nil, handle.ModeUpdate)

	n, err := h.Write([]byte("Hello"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Write() = %d, want 5", n)
	}
	if got := h.Bytes(); !bytes.Equal(got, []byte("Hello")) {
		t.Errorf("Bytes() = %q, want %q", got, "Hello")
	}
}

func TestWrite_SpliceOverwrite(t *testing.T) {
	// General rule: result = buf[:pos] + p + buf[pos+len(p):].
	tests := []struct {
		name    string
		initial string
		pos     int64
		write   string
		want    string
	}{
		{"tail exactly covered", "Hello!", 2, "World", "HeWorld"},
		{"inside without truncation", "Hello, World!", 0, "Howdy", "Howdy, World!"},
		{"extend past end", "abc", 2, "xyz", "abxyz"},
		{"at end appends", "abc", 3, "def", "abcdef"},
		{"mid splice keeps trailing", "0123456789", 3, "AB", "012AB56789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := mustNew(t, []byte(tt.initial), handle.ModeUpdate)
			if _, err := h.Seek(tt.pos, handle.SeekStart); err != nil {
				t.Fatalf("Seek() error = %v", err)
			}
			if _, err := h.Write([]byte(tt.write)); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if got := h.Bytes(); string(got) != tt.want {
				t.Errorf("Bytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrite_AdvancesCursor(t *testing.T) {
	h := mustNew(t, []byte("abcdef"), handle.ModeUpdate)
	if _, err := h.Seek(2, handle.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if _, err := h.Write([]byte("XY")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	pos, err := h.Tell()
	if err != nil {
		t.Fatalf("Tell() error = %v", err)
	}
	if pos != 4 {
		t.Errorf("Tell() = %d, want 4", pos)
	}
}

func TestWrite_ReadModeFails(t *testing.T) {
	h := mustNew(t, []byte("abc"), handle.ModeRead)
	if _, err := h.Write([]byte("x")); !errors.Is(err, handle.ErrNotWritable) {
		t.Errorf("Write() error = %v, want ErrNotWritable", err)
	}
}

func TestWrite_ClosedFails(t *testing.T) {
	h := mustNew(t, nil, handle.ModeUpdate)
	h.Close()
	if _, err := h.Write([]byte("x")); !errors.Is(err, handle.ErrClosed) {
		t.Errorf("Write() error = %v, want ErrClosed", err)
	}
}

func TestSeek_Clamping(t *testing.T) {
	h := mustNew(t, []byte("abcdef"), handle.ModeRead)

	tests := []struct {
		name   string
		offset int64
		whence handle.Whence
		want   int64
	}{
		{"negative from start", -100, handle.SeekStart, 0},
		{"past end from start", 100, handle.SeekStart, 6},
		{"end minus two", -2, handle.SeekEnd, 4},
		{"past end from end", 10, handle.SeekEnd, 6},
		{"negative from end", -100, handle.SeekEnd, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := h.Seek(tt.offset, tt.whence)
			if err != nil {
				t.Fatalf("Seek() error = %v", err)
			}
			if pos != tt.want {
				t.Errorf("Seek(%d, %v) = %d, want %d", tt.offset, tt.whence, pos, tt.want)
			}
		})
	}
}

func TestSeek_Current(t *testing.T) {
	h := mustNew(t, []byte("abcdef"), handle.ModeRead)
	if _, err := h.Seek(3, handle.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	pos, err := h.Seek(-1, handle.SeekCurrent)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if pos != 2 {
		t.Errorf("Seek(-1, current) = %d, want 2", pos)
	}
}

func TestSeek_InvalidWhence(t *testing.T) {
	h := mustNew(t, []byte("abc"), handle.ModeRead)
	if _, err := h.Seek(0, handle.Whence(9)); !errors.Is(err, handle.ErrInvalidWhence) {
		t.Errorf("Seek() error = %v, want ErrInvalidWhence", err)
	}
}

func TestRewind(t *testing.T) {
	h := mustNew(t, []byte("abcdef"), handle.ModeRead)
	if _, err := h.Read(4); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if err := h.Rewind(); err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}

	pos, err := h.Tell()
	if err != nil {
		t.Fatalf("Tell() error = %v", err)
	}
	if pos != 0 {
		t.Errorf("Tell() = %d, want 0", pos)
	}
}

func TestClose_Idempotent(t *testing.T) {
	h := mustNew(t, []byte("abc"), handle.ModeUpdate)

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !h.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestBytes_AvailableAfterClose(t *testing.T) {
	h := mustNew(t, nil, handle.ModeUpdate)
	if _, err := h.Write([]byte("output")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	h.Close()

	if got := h.Bytes(); !bytes.Equal(got, []byte("output")) {
		t.Errorf("Bytes() after close = %q, want %q", got, "output")
	}
}

func TestRead_ReturnsCopy(t *testing.T) {
	h := mustNew(t, []byte("abcdef"), handle.ModeUpdate)

	got, err := h.Read(3)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	// Overwrite the region just read; the returned slice must not change.
	if err := h.Rewind(); err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}
	if _, err := h.Write([]byte("XXX")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if string(got) != "abc" {
		t.Errorf("Read() result mutated to %q, want %q", got, "abc")
	}
}

func TestSize(t *testing.T) {
	h := mustNew(t, []byte("abc"), handle.ModeUpdate)

	size, err := h.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 3 {
		t.Errorf("Size() = %d, want 3", size)
	}

	if _, err := h.Seek(0, handle.SeekEnd); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if _, err := h.Write([]byte("defg")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	size, err = h.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 7 {
		t.Errorf("Size() = %d, want 7 after extension", size)
	}
}
