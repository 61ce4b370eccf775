package rates

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Store publishes the current rate table. Readers take a snapshot with Current and
// keep using it for the whole calculation; Replace and Refresh swap in a new table
// without touching the old one.
type Store struct {
	current atomic.Pointer[Table]
	loader  Loader
}

// NewStore creates a store holding the initial table. The loader is used by Refresh
// and may be nil.
func NewStore(initial *Table, loader Loader) (*Store, error) {
	if initial == nil {
		return nil, errors.New("initial rate table is required")
	}
	s := &Store{loader: loader}
	if err := s.Replace(initial); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the table in effect
func (s *Store) Current() *Table {
	return s.current.Load()
}

// Replace validates and installs a new table. t itself is never written; when its
// due dates have not been parsed yet a copy carrying them is installed instead.
func (s *Store) Replace(t *Table) error {
	if t == nil {
		return errors.New("rate table is nil")
	}
	dates, err := t.check()
	if err != nil {
		return fmt.Errorf("refusing invalid rate table: %w", err)
	}
	if t.dueDates != dates {
		cp := *t
		cp.dueDates = dates
		t = &cp
	}
	s.current.Store(t)
	return nil
}

// Refresh reloads from the configured loader. On failure the current table stays.
func (s *Store) Refresh(ctx context.Context) (*Table, error) {
	if s.loader == nil {
		return s.Current(), errors.New("no rate loader configured")
	}
	t, err := s.loader.Load(ctx)
	if err != nil {
		return s.Current(), fmt.Errorf("refresh from %s failed: %w", s.loader.Describe(), err)
	}
	if err := s.Replace(t); err != nil {
		return s.Current(), err
	}
	return s.Current(), nil
}

// LoaderDescription names the refresh source for status output
func (s *Store) LoaderDescription() string {
	if s.loader == nil {
		return "none"
	}
	return s.loader.Describe()
}
