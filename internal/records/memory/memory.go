// Package memory is an in-process records.Store used by tests and the
// memory backend. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"rentbook/internal/core"
	"rentbook/internal/records"
)

type syncState int

const (
	syncPending syncState = iota
	syncDone
	syncFailed
)

type Store struct {
	mu         sync.Mutex
	properties map[string]core.Property
	compliance []core.ComplianceRecord
	entries    []core.MoneyEntry
	syncStates map[string]syncState
	tenancies  []core.Tenancy
}

var _ records.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		properties: make(map[string]core.Property),
		syncStates: make(map[string]syncState),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateProperty(_ context.Context, p core.Property) (core.Property, error) {
	if err := p.Validate(); err != nil {
		return core.Property{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.EnabledComplianceTypes = cloneTypes(p.EnabledComplianceTypes)
	s.properties[p.ID] = p
	return cloneProperty(p), nil
}

func (s *Store) GetProperty(_ context.Context, id string) (core.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.properties[id]
	if !ok {
		return core.Property{}, fmt.Errorf("property %s: %w", id, records.ErrNotFound)
	}
	return cloneProperty(p), nil
}

func (s *Store) ListProperties(_ context.Context) ([]core.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, cloneProperty(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nickname != out[j].Nickname {
			return out[i].Nickname < out[j].Nickname
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateProperty(_ context.Context, p core.Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[p.ID]; !ok {
		return fmt.Errorf("property %s: %w", p.ID, records.ErrNotFound)
	}
	s.properties[p.ID] = cloneProperty(p)
	return nil
}

func (s *Store) CreateCompliance(_ context.Context, r core.ComplianceRecord) (core.ComplianceRecord, error) {
	if err := r.Validate(); err != nil {
		return core.ComplianceRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[r.PropertyID]; !ok {
		return core.ComplianceRecord{}, fmt.Errorf("property %s: %w", r.PropertyID, records.ErrNotFound)
	}
	r.ID = uuid.NewString()
	r = cloneRecord(r)
	s.compliance = append(s.compliance, r)
	return cloneRecord(r), nil
}

func (s *Store) ListCompliance(_ context.Context, propertyID string) ([]core.ComplianceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ComplianceRecord
	for _, r := range s.compliance {
		if propertyID == "" || r.PropertyID == propertyID {
			out = append(out, cloneRecord(r))
		}
	}
	return out, nil
}

func (s *Store) UpdateComplianceStatus(_ context.Context, id string, status core.ComplianceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.compliance {
		if s.compliance[i].ID == id {
			s.compliance[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("compliance record %s: %w", id, records.ErrNotFound)
}

func (s *Store) CreateEntry(_ context.Context, e core.MoneyEntry) (core.MoneyEntry, error) {
	if err := e.Validate(); err != nil {
		return core.MoneyEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.Amount = e.Amount.Round(2)
	s.entries = append(s.entries, e)
	s.syncStates[e.ID] = syncPending
	return e, nil
}

func (s *Store) GetEntry(_ context.Context, id string) (core.MoneyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return core.MoneyEntry{}, fmt.Errorf("money entry %s: %w", id, records.ErrNotFound)
}

func (s *Store) ListEntries(_ context.Context, f records.EntryFilter) ([]core.MoneyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MoneyEntry
	for _, e := range s.entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *Store) PendingSync(_ context.Context, limit int) ([]core.MoneyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MoneyEntry
	for _, e := range s.entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		if s.syncStates[e.ID] != syncDone {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id string) error {
	return s.setSyncState(id, syncDone)
}

func (s *Store) MarkSyncError(_ context.Context, id string) error {
	return s.setSyncState(id, syncFailed)
}

func (s *Store) setSyncState(id string, st syncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.syncStates[id]; !ok {
		return fmt.Errorf("money entry %s: %w", id, records.ErrNotFound)
	}
	s.syncStates[id] = st
	return nil
}

func (s *Store) CreateTenancy(_ context.Context, t core.Tenancy) (core.Tenancy, error) {
	if err := t.Validate(); err != nil {
		return core.Tenancy{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[t.PropertyID]; !ok {
		return core.Tenancy{}, fmt.Errorf("property %s: %w", t.PropertyID, records.ErrNotFound)
	}
	t.ID = uuid.NewString()
	s.tenancies = append(s.tenancies, t)
	return t, nil
}

func (s *Store) ListTenancies(_ context.Context) ([]core.Tenancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Tenancy(nil), s.tenancies...), nil
}

func cloneTypes(in []core.ComplianceType) []core.ComplianceType {
	if len(in) == 0 {
		return nil
	}
	return append([]core.ComplianceType(nil), in...)
}

func cloneProperty(p core.Property) core.Property {
	p.EnabledComplianceTypes = cloneTypes(p.EnabledComplianceTypes)
	return p
}

func cloneRecord(r core.ComplianceRecord) core.ComplianceRecord {
	if r.DueDate != nil {
		d := *r.DueDate
		r.DueDate = &d
	}
	if r.LastCompleted != nil {
		d := *r.LastCompleted
		r.LastCompleted = &d
	}
	return r
}
