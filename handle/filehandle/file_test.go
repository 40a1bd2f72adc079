package filehandle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytepress/bytepress/handle"
)

func tempFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), handle.ModeRead)
	if err == nil {
		t.Fatal("Open() expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestOpen_InvalidMode(t *testing.T) {
	_, err := Open(tempFile(t, nil), handle.Mode(42))
	if !errors.Is(err, handle.ErrInvalidMode) {
		t.Errorf("Open() error = %v, want ErrInvalidMode", err)
	}
}

func TestOpen_WriteModeTruncates(t *testing.T) {
	path := tempFile(t, []byte("existing content"))

	h, err := Open(path, handle.ModeWrite)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	size, err := h.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 0 {
		t.Errorf("Size() = %d, want 0 after truncating open", size)
	}
}

func TestOpen_UpdatePreservesContent(t *testing.T) {
	path := tempFile(t, []byte("keep me"))

	h, err := Open(path, handle.ModeUpdate)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	got, err := h.Read(7)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "keep me" {
		t.Errorf("Read() = %q, want %q", got, "keep me")
	}
}

func TestOpen_AppendStartsAtEnd(t *testing.T) {
	path := tempFile(t, []byte("abc"))

	h, err := Open(path, handle.ModeAppend)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

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
	h.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(data, []byte("abcdef")) {
		t.Errorf("file = %q, want %q", data, "abcdef")
	}
}

func TestRead_ShortAtEOF(t *testing.T) {
	h, err := Open(tempFile(t, []byte("abc")), handle.ModeRead)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	got, err := h.Read(100)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("Read(100) = %q, want %q", got, "abc")
	}

	got, err = h.Read(1)
	if err != nil {
		t.Fatalf("Read() at EOF error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Read() at EOF = %q, want empty", got)
	}
}

func TestWrite_ReadModeFails(t *testing.T) {
	h, err := Open(tempFile(t, []byte("abc")), handle.ModeRead)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	if _, err := h.Write([]byte("x")); !errors.Is(err, handle.ErrNotWritable) {
		t.Errorf("Write() error = %v, want ErrNotWritable", err)
	}
}

func TestWrite_OverwriteInPlace(t *testing.T) {
	path := tempFile(t, []byte("Hello, World!"))

	h, err := Open(path, handle.ModeUpdate)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := h.Seek(7, handle.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if _, err := h.Write([]byte("Go")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	h.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(data, []byte("Hello, Gorld!")) {
		t.Errorf("file = %q, want %q", data, "Hello, Gorld!")
	}
}

func TestSeek_Clamping(t *testing.T) {
	h, err := Open(tempFile(t, []byte("abcdef")), handle.ModeRead)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

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

func TestSeek_InvalidWhence(t *testing.T) {
	h, err := Open(tempFile(t, []byte("abc")), handle.ModeRead)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	if _, err := h.Seek(0, handle.Whence(9)); !errors.Is(err, handle.ErrInvalidWhence) {
		t.Errorf("Seek() error = %v, want ErrInvalidWhence", err)
	}
}

func TestTell_TracksReads(t *testing.T) {
	h, err := Open(tempFile(t, []byte("abcdef")), handle.ModeRead)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer h.Close()

	if _, err := h.Read(4); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	pos, err := h.Tell()
	if err != nil {
		t.Fatalf("Tell() error = %v", err)
	}
	if pos != 4 {
		t.Errorf("Tell() = %d, want 4", pos)
	}
}

func TestClose_Idempotent(t *testing.T) {
	h, err := Open(tempFile(t, []byte("abc")), handle.ModeUpdate)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

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

func TestFlush_ClosedIsNoop(t *testing.T) {
	h, err := Open(tempFile(t, nil), handle.ModeUpdate)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	h.Close()

	if err := h.Flush(); err != nil {
		t.Errorf("Flush() after close error = %v, want nil", err)
	}
}

func TestOperations_ClosedFail(t *testing.T) {
	h, err := Open(tempFile(t, []byte("abc")), handle.ModeUpdate)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	h.Close()

	if _, err := h.Read(1); !errors.Is(err, handle.ErrClosed) {
		t.Errorf("Read() error = %v, want ErrClosed", err)
	}
	if _, err := h.Write([]byte("x")); !errors.Is(err, handle.ErrClosed) {
		t.Errorf("Write() error = %v, want ErrClosed", err)
	}
	if _, err := h.Seek(0, handle.SeekStart); !errors.Is(err, handle.ErrClosed) {
		t.Errorf("Seek() error = %v, want ErrClosed", err)
	}
}
