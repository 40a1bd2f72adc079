// Package zstdpack provides a zstd algorithm plugin backed by
// github.com/klauspost/compress.
package zstdpack

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/bytepress/bytepress/handle"
	"github.com/bytepress/bytepress/internal/chunkio"
	"github.com/bytepress/bytepress/plugin"
	"github.com/bytepress/bytepress/registry"
)

// Name is the algorithm name the plugin registers under both roles.
const Name = "zstd"

// Compile-time check that Plugin implements plugin.Plugin.
var _ plugin.Plugin = (*Plugin)(nil)

// Plugin registers zstd compression and decompression.
type Plugin struct {
	reg *registry.Registry
}

// New creates the zstd plugin.
func New() *Plugin {
	return &Plugin{}
}

// Metadata returns the plugin descriptor.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:           "zstdpack",
		Version:        "1.0.0",
		Author:         "bytepress authors",
		Description:    "zstd compression backed by klauspost/compress",
		HostConstraint: "~> 0.1",
		License:        "MIT",
		Homepage:       "https://github.com/klauspost/compress",
		Tags:           []string{"codec", "zstd"},
		Algorithms:     []string{Name},
	}
}

// Setup registers the zstd factories into the shared registry.
func (p *Plugin) Setup(reg *registry.Registry) error {
	reg.Register(Name, registry.RoleCompressor, newCompressor)
	reg.Register(Name, registry.RoleDecompressor, newDecompressor)
	p.reg = reg
	return nil
}

// Activate is a no-op; zstd holds no external resources.
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

// Compress streams the input through a zstd encoder in block-size chunks and
// returns the input bytes consumed. The frame is finalized before returning,
// so output bytes depend only on the input, not on the chosen block size.
func (c *compressor) Compress() (int64, error) {
	enc, err := zstd.NewWriter(handle.NewWriter(c.out))
	if err != nil {
		return 0, fmt.Errorf("zstd: creating encoder: %w", err)
	}

	total, err := chunkio.Pump(enc, c.in, c.blockSize)
	if err != nil {
		enc.Close()
		return total, fmt.Errorf("zstd: %w", err)
	}
	if err := enc.Close(); err != nil {
		return total, fmt.Errorf("zstd: finalizing frame: %w", err)
	}
	return total, nil
}

// Free is a no-op; Compress finalizes the frame itself.
func (c *compressor) Free() {}

type decompressor struct {
	in        handle.Handle
	out       handle.Handle
	blockSize int

	dec       *zstd.Decoder
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

	if d.dec == nil {
		dec, err := zstd.NewReader(handle.NewReader(d.in))
		if err != nil {
			return 0, fmt.Errorf("zstd: creating decoder: %w", err)
		}
		d.dec = dec
	}

	produced, err := chunkio.CopyLimit(d.out, d.dec, d.blockSize, limit)
	if err != nil {
		return produced, fmt.Errorf("zstd: %w", err)
	}
	if produced < limit {
		d.exhausted = true
	}
	return produced, nil
}

// Free releases the decoder if one was created. It never panics and is safe
// to call when nothing was allocated.
func (d *decompressor) Free() {
	if d.dec != nil {
		d.dec.Close()
		d.dec = nil
	}
}
