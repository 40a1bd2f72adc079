// Package gzippack provides a gzip algorithm plugin.
package gzippack

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/bytepress/bytepress/handle"
	"github.com/bytepress/bytepress/internal/chunkio"
	"github.com/bytepress/bytepress/plugin"
	"github.com/bytepress/bytepress/registry"
)

// Name is the algorithm name the plugin registers under both roles.
const Name = "gzip"

// Compile-time check that Plugin implements plugin.Plugin.
var _ plugin.Plugin = (*Plugin)(nil)

// Plugin registers gzip compression and decompression.
type Plugin struct {
	reg *registry.Registry
}

// New creates the gzip plugin.
func New() *Plugin {
	return &Plugin{}
}

// Metadata returns the plugin descriptor.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:           "gzippack",
		Version:        "1.0.0",
		Author:         "bytepress authors",
		Description:    "gzip compression backed by compress/gzip",
		HostConstraint: "~> 0.1",
		License:        "MIT",
		Tags:           []string{"codec", "deflate"},
		Algorithms:     []string{Name},
	}
}

// Setup registers the gzip factories into the shared registry.
func (p *Plugin) Setup(reg *registry.Registry) error {
	reg.Register(Name, registry.RoleCompressor, newCompressor)
	reg.Register(Name, registry.RoleDecompressor, newDecompressor)
	p.reg = reg
	return nil
}

// Activate is a no-op; gzip holds no external resources.
func (p *Plugin) Activate() error { return nil }

// Deactivate is a no-op.
func (p *Plugin) Deactivate() error { return nil }

// Cleanup unregisters the factories. It is idempotent.
func (p *Plugin) Cleanup() error {
	if p.reg != nil {
		p.reg.Unregister(Name, registry.RoleCompressor)
		p.reg.Unregister(Name, registry.RoleDecompressor)
		p.reg = nil
	}
	return nil
}

// Compile-time checks for the algorithm contracts.
var (
	_ registry.Compressor   = (*compressor)(nil)
	_ registry.Decompressor = (*decompressor)(nil)
)

type compressor struct {
	in        handle.Handle
	out       handle.Handle
	blockSize int
}

func newCompressor(_ handle.System, in, out handle.Handle, blockSize int) (registry.Algorithm, error) {
	return &compressor{in: in, out: out, blockSize: blockSize}, nil
}

// Compress streams the input through a gzip writer in block-size chunks and
// returns the input bytes consumed. The gzip stream is finalized before
// returning, so output bytes depend only on the input, not on the chosen
// block size.
func (c *compressor) Compress() (int64, error) {
	gz := gzip.NewWriter(handle.NewWriter(c.out))

	total, err := chunkio.Pump(gz, c.in, c.blockSize)
	if err != nil {
		gz.Close()
		return total, fmt.Errorf("gzip: %w", err)
	}
	if err := gz.Close(); err != nil {
		return total, fmt.Errorf("gzip: finalizing stream: %w", err)
	}
	return total, nil
}

// Free is a no-op; Compress finalizes the stream itself.
func (c *compressor) Free() {}

type decompressor struct {
	in        handle.Handle
	out       handle.Handle
	blockSize int

	gz        *gzip.Reader
	exhausted bool
}

func newDecompressor(_ handle.System, in, out handle.Handle, blockSize int) (registry.Algorithm, error) {
	return &decompressor{in: in, out: out, blockSize: blockSize}, nil
}

// Decompress produces at most limit bytes of decompressed data, continuing
// from where the previous call stopped. Empty input yields zero bytes and no
// error.
func (d *decompressor) Decompress(limit int64) (int64, error) {
	if d.exhausted || limit <= 0 {
		return 0, nil
	}

	if d.gz == nil {
		gz, err := gzip.NewReader(handle.NewReader(d.in))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				d.exhausted = true
				return 0, nil
			}
			return 0, fmt.Errorf("gzip: reading header: %w", err)
		}
		d.gz = gz
	}

	produced, err := chunkio.CopyLimit(d.out, d.gz, d.blockSize, limit)
	if err != nil {
		return produced, fmt.Errorf("gzip: %w", err)
	}
	if produced < limit {
		d.exhausted = true
	}
	return produced, nil
}

// Free closes the gzip reader if one was opened. It never panics and is safe
// to call when nothing was allocated.
func (d *decompressor) Free() {
	if d.gz != nil {
		d.gz.Close()
		d.gz = nil
	}
}
