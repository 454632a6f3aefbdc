// Package memory provides an in-memory Store implementation (testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gekoparty/utgifter/period"
	"github.com/gekoparty/utgifter/recurring"
)

// Store implements recurring.Store with mutex-guarded maps.
type Store struct {
	mu        sync.RWMutex
	templates map[string]recurring.Template
	payments  map[string]recurring.Payment
}

func New() *Store {
	return &Store{
		templates: make(map[string]recurring.Template),
		payments:  make(map[string]recurring.Payment),
	}
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

func (s *Store) ListTemplates(_ context.Context, filter recurring.Filter, includeArchived bool) ([]recurring.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []recurring.Template
	for _, t := range s.templates {
		if !includeArchived && !t.IsActive {
			continue
		}
		if !filter.Matches(t) {
			continue
		}
		out = append(out, cloneTemplate(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) GetTemplate(_ context.Context, id string) (*recurring.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, nil
	}
	c := cloneTemplate(t)
	return &c, nil
}

func (s *Store) SaveTemplate(_ context.Context, t recurring.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (s *Store) SetArchived(_ context.Context, id string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok {
		return recurring.ErrTemplateNotFound
	}
	t.IsActive = !archived
	s.templates[id] = t
	return nil
}

func (s *Store) AppendTerms(_ context.Context, templateID string, snap recurring.TermsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[templateID]
	if !ok {
		return recurring.ErrTemplateNotFound
	}
	t.Terms = recurring.UpsertTerms(t.Terms, snap)
	s.templates[templateID] = t
	return nil
}

func (s *Store) AddPause(_ context.Context, templateID string, pause recurring.PausePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[templateID]
	if !ok {
		return recurring.ErrTemplateNotFound
	}
	t.Pauses = append(t.Pauses, pause)
	s.templates[templateID] = t
	return nil
}

func (s *Store) UpdatePause(_ context.Context, templateID string, pause recurring.PausePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[templateID]
	if !ok {
		return recurring.ErrTemplateNotFound
	}
	for i := range t.Pauses {
		if t.Pauses[i].ID == pause.ID {
			t.Pauses[i] = pause
			s.templates[templateID] = t
			return nil
		}
	}
	return recurring.ErrPauseNotFound
}

func (s *Store) DeletePause(_ context.Context, templateID, pauseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[templateID]
	if !ok {
		return recurring.ErrTemplateNotFound
	}
	for i := range t.Pauses {
		if t.Pauses[i].ID == pauseID {
			t.Pauses = append(t.Pauses[:i], t.Pauses[i+1:]...)
			s.templates[templateID] = t
			return nil
		}
	}
	return recurring.ErrPauseNotFound
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

func (s *Store) ListPayments(_ context.Context, templateIDs []string, w period.Window) ([]recurring.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(templateIDs))
	for _, id := range templateIDs {
		wanted[id] = true
	}

	var out []recurring.Payment
	for _, p := range s.payments {
		if !wanted[p.RecurringExpenseID] || !w.Contains(p.PeriodKey) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PeriodKey.Before(out[j].PeriodKey)
	})
	return out, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (*recurring.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) FindPayments(_ context.Context, templateID string, key period.Key) ([]recurring.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []recurring.Payment
	for _, p := range s.payments {
		if p.RecurringExpenseID == templateID && p.PeriodKey == key {
			rows = append(rows, p)
		}
	}
	// Most recently created first, id as tie-break: the repair-on-read
	// contract, ordered identically to the sqlite store.
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	return rows, nil
}

func (s *Store) CreatePayment(_ context.Context, p recurring.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *Store) UpdatePayment(_ context.Context, p recurring.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[p.ID]; !ok {
		return recurring.ErrPaymentNotFound
	}
	s.payments[p.ID] = p
	return nil
}

func (s *Store) DeletePayment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[id]; !ok {
		return recurring.ErrPaymentNotFound
	}
	delete(s.payments, id)
	return nil
}

func cloneTemplate(t recurring.Template) recurring.Template {
	c := t
	c.Terms = append([]recurring.TermsSnapshot(nil), t.Terms...)
	c.Pauses = append([]recurring.PausePeriod(nil), t.Pauses...)
	return c
}
