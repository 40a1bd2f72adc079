// Package registry maps (algorithm name, role) pairs to factories that
// construct compressors and decompressors bound to a pair of handles.
//
// A Registry is an explicit service object: the lifecycle manager creates one
// at process start and shares it with every plugin during setup. Reset is
// part of the public contract so tests can restore a clean slate without
// reaching into internals.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/bytepress/bytepress/handle"
	"github.com/bytepress/bytepress/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotRegistered indicates a create for a key with no factory.
	ErrNotRegistered = errors.New("registry: algorithm not registered")

	// ErrBlockSize indicates a non-positive block size.
	ErrBlockSize = errors.New("registry: block size must be positive")

	// ErrWrongRole indicates a factory produced an instance that does not
	// satisfy the role it was registered under.
	ErrWrongRole = errors.New("registry: algorithm does not satisfy requested role")
)

// Role distinguishes compressor and decompressor registrations.
type Role int

const (
	// RoleCompressor registers a compressing algorithm.
	RoleCompressor Role = iota
	// RoleDecompressor registers a decompressing algorithm.
	RoleDecompressor
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case RoleCompressor:
		return "compressor"
	case RoleDecompressor:
		return "decompressor"
	default:
		return "invalid"
	}
}

// Algorithm is a live algorithm instance bound to a handle pair.
type Algorithm interface {
	// Free releases any algorithm-internal resources. It is safe to call
	// even if no resources were allocated and never panics.
	Free()
}

// Compressor reads from its input handle in chunks no larger than the
// configured block size, transforms each chunk, and writes the result to its
// output handle.
type Compressor interface {
	Algorithm

	// Compress runs to end-of-input and returns the total input bytes
	// consumed. Output bytes are independent of the chosen block size.
	Compress() (int64, error)
}

// Decompressor produces output bounded by an explicit byte limit.
type Decompressor interface {
	Algorithm

	// Decompress produces at most limit bytes and returns the exact count
	// produced, which is smaller when the input is exhausted first.
	// Successive calls continue from the advanced input position.
	Decompress(limit int64) (int64, error)
}

// Factory constructs an algorithm instance bound to the given handle pair.
// blockSize is the maximum chunk size per internal iteration; it is a
// performance knob, never an input to correctness.
type Factory func(sys handle.System, in, out handle.Handle, blockSize int) (Algorithm, error)

type key struct {
	name string
	role Role
}

// Registry is the shared algorithm table. It is safe for concurrent use:
// reads run concurrently, mutations are serialized.
type Registry struct {
	mu        sync.RWMutex
	factories map[key]Factory

	logger *zap.Logger
	stats  stats.Collector
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithStats sets the stats collector. If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return func(r *Registry) {
		r.stats = c
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		factories: make(map[key]Factory),
		logger:    zap.NewNop(),
		stats:     stats.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register installs factory at (name, role), replacing any existing entry.
// Last write wins; re-registration is not an error.
func (r *Registry) Register(name string, role Role, factory Factory) {
	r.mu.Lock()
	r.factories[key{name, role}] = factory
	size := len(r.factories)
	r.mu.Unlock()

	r.stats.IncCounter(stats.MetricRegistrations, 1)
	r.stats.SetGauge(stats.MetricAlgorithms, int64(size))
	r.logger.Debug("algorithm registered",
		zap.String("name", name),
		zap.Stringer("role", role),
	)
}

// Unregister removes the entry at (name, role) if present. Removing an
// absent entry is not an error.
func (r *Registry) Unregister(name string, role Role) {
	r.mu.Lock()
	delete(r.factories, key{name, role})
	size := len(r.factories)
	r.mu.Unlock()

	r.stats.SetGauge(stats.MetricAlgorithms, int64(size))
	r.logger.Debug("algorithm unregistered",
		zap.String("name", name),
		zap.Stringer("role", role),
	)
}

// Registered reports whether a factory exists at (name, role).
func (r *Registry) Registered(name string, role Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[key{name, role}]
	return ok
}

// Names returns the sorted algorithm names registered under role.
func (r *Registry) Names(role Role) []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for k := range r.factories {
		if k.role == role {
			names = append(names, k.name)
		}
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered factories across both roles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// Create constructs a live algorithm instance from the factory registered at
// (name, role). It fails with ErrNotRegistered when no factory exists and
// with ErrBlockSize when blockSize is not positive.
func (r *Registry) Create(name string, role Role, sys handle.System, in, out handle.Handle, blockSize int) (Algorithm, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBlockSize, blockSize)
	}

	r.mu.RLock()
	factory, ok := r.factories[key{name, role}]
	r.mu.RUnlock()

	if !ok {
		r.stats.IncCounter(stats.MetricCreateMisses, 1)
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotRegistered, name, role)
	}

	alg, err := factory(sys, in, out, blockSize)
	if err != nil {
		return nil, fmt.Errorf("creating %s %s: %w", name, role, err)
	}

	r.stats.IncCounter(stats.MetricCreates, 1)
	return alg, nil
}

// NewCompressor creates a compressor registered under name.
func (r *Registry) NewCompressor(name string, sys handle.System, in, out handle.Handle, blockSize int) (Compressor, error) {
	alg, err := r.Create(name, RoleCompressor, sys, in, out, blockSize)
	if err != nil {
		return nil, err
	}
	c, ok := alg.(Compressor)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a compressor", ErrWrongRole, name)
	}
	return c, nil
}

// NewDecompressor creates a decompressor registered under name.
func (r *Registry) NewDecompressor(name string, sys handle.System, in, out handle.Handle, blockSize int) (Decompressor, error) {
	alg, err := r.Create(name, RoleDecompressor, sys, in, out, blockSize)
	if err != nil {
		return nil, err
	}
	d, ok := alg.(Decompressor)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a decompressor", ErrWrongRole, name)
	}
	return d, nil
}

// Reset removes every registered factory, restoring a clean slate.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.factories = make(map[key]Factory)
	r.mu.Unlock()

	r.stats.SetGauge(stats.MetricAlgorithms, 0)
	r.logger.Debug("registry reset")
}
