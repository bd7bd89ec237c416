// Package store defines the persistence contract for yield series
// artifacts. A series is identified by its model.SeriesKey; an existing
// artifact is reused verbatim and never recomputed.
package store

import (
	"context"
	"sync"

	"github.com/kilianp07/pvcompare/core/factory"
	"github.com/kilianp07/pvcompare/core/model"
)

// SeriesStore persists yield series by key.
type SeriesStore interface {
	// Get returns the stored series and true, or false when absent.
	Get(ctx context.Context, key model.SeriesKey) (model.YieldSeries, bool, error)
	// Put stores the series under its key, replacing any previous artifact.
	Put(ctx context.Context, s model.YieldSeries) error
	Close() error
}

// MemoryStore keeps series in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	series map[string]model.YieldSeries
	puts   int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[string]model.YieldSeries)}
}

func (m *MemoryStore) Get(ctx context.Context, key model.SeriesKey) (model.YieldSeries, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.YieldSeries{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[key.String()]
	if !ok {
		return model.YieldSeries{}, false, nil
	}
	return s.Clone(), true, nil
}

func (m *MemoryStore) Put(ctx context.Context, s model.YieldSeries) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[s.Key.String()] = s.Clone()
	m.puts++
	return nil
}

// Puts returns the number of writes performed.
func (m *MemoryStore) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

func (m *MemoryStore) Close() error { return nil }

var registry = factory.NewRegistry[SeriesStore]()

// Register adds a store factory identified by name.
func Register(name string, f factory.Factory[SeriesStore]) error {
	return registry.Register(name, f)
}

// New creates a SeriesStore from cfg. An empty type yields a MemoryStore.
func New(cfg factory.ModuleConfig) (SeriesStore, error) {
	if cfg.Type == "" {
		return NewMemoryStore(), nil
	}
	return registry.Create(cfg)
}

func init() {
	_ = Register("memory", func(map[string]any) (SeriesStore, error) { return NewMemoryStore(), nil })
}
