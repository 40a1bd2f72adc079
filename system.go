package bytepress

import (
	"github.com/bytepress/bytepress/handle"
	"github.com/bytepress/bytepress/handle/filehandle"
	"github.com/bytepress/bytepress/handle/memhandle"
)

// Compile-time check that System implements handle.System.
var _ handle.System = (*System)(nil)

// System is the default handle opener backed by the local filesystem and
// in-memory buffers.
type System struct{}

// NewSystem creates the default handle system.
func NewSystem() *System {
	return &System{}
}

// OpenFile opens a file-backed handle at path with the given mode.
func (s *System) OpenFile(path string, mode handle.Mode) (handle.Handle, error) {
	return filehandle.Open(path, mode)
}

// OpenMemory opens a memory-backed handle seeded with initial bytes, open
// for both reading and writing.
func (s *System) OpenMemory(initial []byte) handle.Handle {
	h, _ := memhandle.New(initial, handle.ModeUpdate)
	return h
}

// OpenMemoryMode opens a memory-backed handle with an explicit mode.
func (s *System) OpenMemoryMode(initial []byte, mode handle.Mode) (handle.Handle, error) {
	return memhandle.New(initial, mode)
}
