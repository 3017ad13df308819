// Package registry holds the enabled framework detectors and their
// per-framework configuration. A Registry carries no conversation state;
// after construction it is read-mostly and safe to share across
// concurrent orchestration calls.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
	"github.com/fyrsmithlabs/psyched/internal/framework"
	"github.com/fyrsmithlabs/psyched/internal/pattern"
)

// Errors for registry operations.
var (
	ErrAlreadyRegistered = errors.New("framework already registered")
	ErrInvalidConfig     = errors.New("invalid framework config")
	ErrNilDetector       = errors.New("detector cannot be nil")
	ErrNotFound          = errors.New("framework not found")
)

// Config is the per-framework configuration owned by the Registry.
type Config struct {
	Enabled             bool    `koanf:"enabled" json:"enabled"`
	AnalysisInterval    int     `koanf:"analysis_interval" json:"analysis_interval"`
	ConfidenceThreshold float64 `koanf:"confidence_threshold" json:"confidence_threshold"`
	WindowSize          int     `koanf:"window_size" json:"window_size"`
}

// DefaultConfig returns the default per-framework configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		AnalysisInterval:    3,
		ConfidenceThreshold: 0.5,
		WindowSize:          10,
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if c.AnalysisInterval < 1 {
		return fmt.Errorf("%w: analysis_interval must be >= 1, got %d", ErrInvalidConfig, c.AnalysisInterval)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window_size must be >= 1, got %d", ErrInvalidConfig, c.WindowSize)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence_threshold must be in [0,1], got %v", ErrInvalidConfig, c.ConfidenceThreshold)
	}
	return nil
}

// Entry pairs a registered detector with its config and compiled pattern
// set. The compiled set is built once at registration and never mutated.
type Entry struct {
	Detector framework.Detector
	Config   Config
	patterns *pattern.Set
}

// QuickScan runs the shared lexical scan over messages using the entry's
// cached pattern set. This operation is identical for every framework.
func (e *Entry) QuickScan(messages []conversation.Message) pattern.ScanResult {
	result := e.patterns.Scan(messages)
	result.Framework = e.Detector.Name()
	return result
}

// Registry maps framework names to registered entries, preserving
// registration order for deterministic aggregate ordering.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds a detector with its config. It fails if the name is
// already taken, the config violates its constraints, or the detector's
// pattern definition does not compile.
func (r *Registry) Register(d framework.Detector, cfg Config) error {
	if d == nil {
		return ErrNilDetector
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("framework %q: %w", d.Name(), err)
	}

	set, err := pattern.Compile(d.Patterns())
	if err != nil {
		return fmt.Errorf("framework %q: %w", d.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := d.Name()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}

	r.entries[name] = &Entry{Detector: d, Config: cfg, patterns: set}
	r.order = append(r.order, name)
	return nil
}

// Enabled returns the names of enabled frameworks in registration order.
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if r.entries[name].Config.Enabled {
			names = append(names, name)
		}
	}
	return names
}

// Names returns all registered framework names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Get returns the entry for a framework name.
func (r *Registry) Get(name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return entry, nil
}
