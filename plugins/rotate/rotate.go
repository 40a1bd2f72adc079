// Package rotate provides the rot13 example plugin. The transform is its own
// inverse, which makes it useful for exercising the registry and lifecycle
// machinery end to end without a real compression codec.
package rotate

import (
	"fmt"

	"github.com/bytepress/bytepress/handle"
	"github.com/bytepress/bytepress/plugin"
	"github.com/bytepress/bytepress/registry"
)

// Name is the algorithm name the plugin registers under both roles.
const Name = "rot13"

// Compile-time check that Plugin implements plugin.Plugin.
var _ plugin.Plugin = (*Plugin)(nil)

// Plugin registers the rot13 transform as both compressor and decompressor.
type Plugin struct {
	reg *registry.Registry
}

// New creates the rot13 plugin.
func New() *Plugin {
	return &Plugin{}
}

// Metadata returns the plugin descriptor.
func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:           "rotate",
		Version:        "1.0.0",
		Author:         "bytepress authors",
		Description:    "rot13 transform, a self-inverse example algorithm",
		HostConstraint: "~> 0.1",
		License:        "MIT",
		Tags:           []string{"example", "transform"},
		Algorithms:     []string{Name},
	}
}

// Setup registers the rot13 factories into the shared registry.
func (p *Plugin) Setup(reg *registry.Registry) error {
	reg.Register(Name, registry.RoleCompressor, newCoder)
	reg.Register(Name, registry.RoleDecompressor, newCoder)
	p.reg = reg
	return nil
}

// Activate is a no-op; the transform holds no external resources.
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

// coder applies rot13 in both directions; the transform is self-inverse.
type coder struct {
	in        handle.Handle
	out       handle.Handle
	blockSize int
}

// Compile-time checks that coder satisfies both roles.
var (
	_ registry.Compressor   = (*coder)(nil)
	_ registry.Decompressor = (*coder)(nil)
)

func newCoder(_ handle.System, in, out handle.Handle, blockSize int) (registry.Algorithm, error) {
	return &coder{in: in, out: out, blockSize: blockSize}, nil
}

// Compress rotates the input chunk by chunk and returns the input bytes
// consumed.
func (c *coder) Compress() (int64, error) {
	var total int64
	for {
		chunk, err := c.in.Read(c.blockSize)
		if err != nil {
			return total, fmt.Errorf("rot13: reading input: %w", err)
		}
		if len(chunk) == 0 {
			return total, nil
		}

		rotate(chunk)
		if _, err := c.out.Write(chunk); err != nil {
			return total, fmt.Errorf("rot13: writing output: %w", err)
		}
		total += int64(len(chunk))
	}
}

// Decompress rotates up to limit bytes, reading chunks bounded both by the
// block size and by the remaining allowance, and returns the exact count
// produced.
func (c *coder) Decompress(limit int64) (int64, error) {
	var produced int64
	for produced < limit {
		want := int64(c.blockSize)
		if remaining := limit - produced; remaining < want {
			want = remaining
		}

		chunk, err := c.in.Read(int(want))
		if err != nil {
			return produced, fmt.Errorf("rot13: reading input: %w", err)
		}
		if len(chunk) == 0 {
			return produced, nil
		}

		rotate(chunk)
		if _, err := c.out.Write(chunk); err != nil {
			return produced, fmt.Errorf("rot13: writing output: %w", err)
		}
		produced += int64(len(chunk))
	}
	return produced, nil
}

// Free is a no-op; the transform allocates nothing.
func (c *coder) Free() {}

// rotate applies rot13 in place. Non-letter bytes pass through unchanged.
func rotate(b []byte) {
	for i, ch := range b {
		switch {
		case ch >= 'a' && ch <= 'z':
			b[i] = 'a' + (ch-'a'+13)%26
		case ch >= 'A' && ch <= 'Z':
			b[i] = 'A' + (ch-'A'+13)%26
		}
	}
}
