// Package bytepress is an extensible compression toolkit: plugins register
// named compressor and decompressor algorithms into a shared registry, and
// those algorithms run against abstract handles that hide whether the
// underlying stream is a file or an in-memory buffer.
//
// Example usage:
//
//	mgr := bytepress.New()
//	if err := mgr.Load(rotate.New()); err != nil {
//	    log.Fatal(err)
//	}
//
//	sys := bytepress.NewSystem()
//	in := sys.OpenMemory([]byte("Hello, World!"))
//	out := sys.OpenMemory(nil)
//
//	c, err := mgr.Registry().NewCompressor("rot13", sys, in, out, 1024)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Free()
//
//	if _, err := c.Compress(); err != nil {
//	    log.Fatal(err)
//	}
package bytepress

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bytepress/bytepress/internal/stats"
	"github.com/bytepress/bytepress/plugin"
	"github.com/bytepress/bytepress/registry"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrPluginNotFound indicates a lifecycle call for an unknown plugin.
	ErrPluginNotFound = errors.New("bytepress: plugin not found")

	// ErrAlreadyRegistered indicates a second registration under one name.
	ErrAlreadyRegistered = errors.New("bytepress: plugin already registered")

	// ErrPluginInvalid indicates the plugin failed structural validation.
	ErrPluginInvalid = errors.New("bytepress: plugin failed validation")

	// ErrIncompatible indicates the plugin's host constraint does not cover
	// the running host version.
	ErrIncompatible = errors.New("bytepress: plugin incompatible with host version")
)

// State is a plugin's position in the lifecycle graph:
// Unregistered → Registered → SetUp → Active → Inactive → CleanedUp, with
// Inactive → Active re-activation and CleanedUp reachable from every state
// except Unregistered.
type State int

const (
	StateUnregistered State = iota
	StateRegistered
	StateSetUp
	StateActive
	StateInactive
	StateCleanedUp
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateSetUp:
		return "setup"
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateCleanedUp:
		return "cleanedup"
	default:
		return "invalid"
	}
}

// record tracks one loaded plugin for the manager's entire lifetime.
type record struct {
	plugin plugin.Plugin
	meta   plugin.Metadata
	state  State
}

// Status is a point-in-time snapshot of one loaded plugin.
type Status struct {
	Metadata plugin.Metadata
	State    State
}

// Manager orchestrates plugin lifecycle transitions and owns the process's
// shared algorithm registry. Repeated identical transitions and calls made
// out of declared order are idempotent no-ops; only defined transitions run
// plugin hooks, and hook failures propagate without advancing state.
//
// Mutating operations are serialized by an internal mutex.
type Manager struct {
	mu      sync.Mutex
	records map[string]*record
	order   []string

	registry    *registry.Registry
	hostVersion string
	logger      *zap.Logger
	stats       stats.Collector
}

// New creates a Manager with the given options.
// If no options are provided, sensible defaults are used.
func New(opts ...Option) *Manager {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.registry == nil {
		cfg.registry = registry.New(
			registry.WithLogger(cfg.logger.Named("registry")),
			registry.WithStats(cfg.stats),
		)
	}

	return &Manager{
		records:     make(map[string]*record),
		registry:    cfg.registry,
		hostVersion: cfg.hostVersion,
		logger:      cfg.logger,
		stats:       cfg.stats,
	}
}

// Registry returns the shared algorithm registry owned by this manager.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// HostVersion returns the host version plugins are checked against.
func (m *Manager) HostVersion() string {
	return m.hostVersion
}

// Register validates p and admits it in the Registered state. Registration
// is refused when structural validation fails or when the plugin's host
// constraint does not cover the running host version.
func (m *Manager) Register(p plugin.Plugin) error {
	result := plugin.Validate(p)
	if !result.Valid {
		m.stats.IncCounter(stats.MetricPluginsRejected, 1)
		return fmt.Errorf("%w: %s", ErrPluginInvalid, strings.Join(result.Errors, "; "))
	}

	meta := p.Metadata()
	if errs := plugin.CheckConstraint(meta.HostConstraint, m.hostVersion); len(errs) > 0 {
		m.stats.IncCounter(stats.MetricPluginsRejected, 1)
		return fmt.Errorf("%w: %s", ErrIncompatible, strings.Join(errs, "; "))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[meta.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, meta.Name)
	}

	m.records[meta.Name] = &record{plugin: p, meta: meta, state: StateRegistered}
	m.order = append(m.order, meta.Name)

	m.stats.IncCounter(stats.MetricPluginsRegistered, 1)
	m.logger.Info("plugin registered",
		zap.String("plugin", meta.Name),
		zap.String("version", meta.Version),
	)
	return nil
}

// Setup runs the plugin's setup hook, giving it the shared registry to
// install its algorithm factories into. Calling Setup again once the plugin
// is set up is a no-op.
func (m *Manager) Setup(name string) error {
	return m.transition(name, "setup", StateSetUp, func(rec *record) (bool, error) {
		if rec.state != StateRegistered {
			return false, nil
		}
		return true, rec.plugin.Setup(m.registry)
	})
}

// Activate runs the plugin's activate hook. A set-up or deactivated plugin
// becomes active; anything else is a no-op.
func (m *Manager) Activate(name string) error {
	return m.transition(name, "activate", StateActive, func(rec *record) (bool, error) {
		if rec.state != StateSetUp && rec.state != StateInactive {
			return false, nil
		}
		return true, rec.plugin.Activate()
	})
}

// Deactivate runs the plugin's deactivate hook. Only an active plugin
// transitions; anything else is a no-op.
func (m *Manager) Deactivate(name string) error {
	return m.transition(name, "deactivate", StateInactive, func(rec *record) (bool, error) {
		if rec.state != StateActive {
			return false, nil
		}
		return true, rec.plugin.Deactivate()
	})
}

// Cleanup runs the plugin's cleanup hook from any state except CleanedUp,
// after which the record is terminal. Repeated cleanups are no-ops.
func (m *Manager) Cleanup(name string) error {
	return m.transition(name, "cleanup", StateCleanedUp, func(rec *record) (bool, error) {
		if rec.state == StateCleanedUp {
			return false, nil
		}
		return true, rec.plugin.Cleanup()
	})
}

// transition applies one lifecycle step under the manager's lock. The step
// callback reports whether the hook ran; when it ran without error the
// record advances to next. Hook errors propagate and leave state unchanged.
func (m *Manager) transition(name, hook string, next State, step func(*record) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}

	ran, err := step(rec)
	if err != nil {
		m.stats.IncCounter(stats.MetricHookFailures, 1)
		m.logger.Warn("plugin hook failed",
			zap.String("plugin", name),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", hook, name, err)
	}
	if !ran {
		return nil
	}

	rec.state = next
	m.stats.IncCounter(stats.MetricTransitions, 1)
	m.logger.Debug("plugin transition",
		zap.String("plugin", name),
		zap.String("hook", hook),
		zap.Stringer("state", next),
	)
	return nil
}

// Load registers, sets up, and activates p in one call.
func (m *Manager) Load(p plugin.Plugin) error {
	if err := m.Register(p); err != nil {
		return err
	}
	name := p.Metadata().Name
	if err := m.Setup(name); err != nil {
		return err
	}
	return m.Activate(name)
}

// Shutdown deactivates and cleans up every plugin in registration order.
// Hook failures do not stop the sweep; all errors are joined.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	names := append([]string(nil), m.order...)
	m.mu.Unlock()

	var errs []error
	for _, name := range names {
		if err := m.Deactivate(name); err != nil {
			errs = append(errs, err)
		}
		if err := m.Cleanup(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// State returns the lifecycle state of the named plugin.
func (m *Manager) State(name string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[name]
	if !ok {
		return StateUnregistered, false
	}
	return rec.state, true
}

// Plugins returns a snapshot of every loaded plugin in registration order.
func (m *Manager) Plugins() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Status, 0, len(m.order))
	for _, name := range m.order {
		rec := m.records[name]
		out = append(out, Status{Metadata: rec.meta, State: rec.state})
	}
	return out
}
