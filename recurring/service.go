/*
service.go - Write-side operations of the reconciliation API

PURPOSE:
  The mutations the dashboard performs against the engine: template
  create/update, terms changes, pause CRUD, archive/restore. Each operation
  validates its input fully before touching state and surfaces referential
  failures as not-found.

  Writes are independent, non-transactional operations. Consumers re-query
  the summary after each write; there is no push channel. The engine being
  a pure projection makes that trivially consistent — the next read always
  reflects the latest truth.

SEE ALSO:
  - ledger.go:   payment mutations (separate ledger wrapper)
  - forecast.go: the read side
*/
package recurring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/period"
)

// Service exposes the template-side mutations.
type Service struct {
	store TemplateStore
}

func NewService(store TemplateStore) *Service {
	return &Service{store: store}
}

// =============================================================================
// TEMPLATE CRUD
// =============================================================================

// CreateTemplate normalizes, validates and persists a new template.
func (s *Service) CreateTemplate(ctx context.Context, t Template) (*Template, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.IsActive = true
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	return s.saveTemplate(ctx, t)
}

// UpdateTemplate replaces an existing template's definition. Terms and
// pauses are managed through their own operations and carried over.
func (s *Service) UpdateTemplate(ctx context.Context, id string, t Template) (*Template, error) {
	current, err := s.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	t.ID = current.ID
	t.IsActive = current.IsActive
	t.Terms = current.Terms
	t.Pauses = current.Pauses
	t.CreatedAt = current.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	return s.saveTemplate(ctx, t)
}

func (s *Service) saveTemplate(ctx context.Context, t Template) (*Template, error) {
	t, err := NormalizeTemplate(t)
	if err != nil {
		return nil, err
	}
	if err := ValidateTemplate(t); err != nil {
		return nil, err
	}
	if err := s.store.SaveTemplate(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Archive soft-deletes a template. History stays intact.
func (s *Service) Archive(ctx context.Context, id string) error {
	if _, err := s.mustGet(ctx, id); err != nil {
		return err
	}
	return s.store.SetArchived(ctx, id, true)
}

// Restore flips an archived template back to active.
func (s *Service) Restore(ctx context.Context, id string) error {
	if _, err := s.mustGet(ctx, id); err != nil {
		return err
	}
	return s.store.SetArchived(ctx, id, false)
}

// =============================================================================
// TERMS CHANGES
// =============================================================================

// TermsInput is the change-terms payload. Nil fields are not overridden.
type TermsInput struct {
	PeriodKey        string
	Amount           *decimal.Decimal
	EstimateMin      *decimal.Decimal
	EstimateMax      *decimal.Decimal
	InterestRate     *decimal.Decimal
	RemainingBalance *decimal.Decimal
	HasMonthlyFee    *bool
	MonthlyFee       *decimal.Decimal
	Note             string
}

// ChangeTerms appends an effective-dated snapshot (or updates the snapshot
// already effective from the same period). Prior periods' resolved terms
// are unaffected.
func (s *Service) ChangeTerms(ctx context.Context, templateID string, in TermsInput) (*TermsSnapshot, error) {
	key, err := parsePeriodKey(in.PeriodKey)
	if err != nil {
		return nil, err
	}
	if in.Amount == nil && in.EstimateMin == nil && in.EstimateMax == nil &&
		in.InterestRate == nil && in.RemainingBalance == nil &&
		in.HasMonthlyFee == nil && in.MonthlyFee == nil {
		return nil, &FieldError{Field: "terms", Value: nil, Reason: "at least one field must change"}
	}
	for field, v := range map[string]*decimal.Decimal{
		"amount":           in.Amount,
		"estimateMin":      in.EstimateMin,
		"estimateMax":      in.EstimateMax,
		"remainingBalance": in.RemainingBalance,
		"monthlyFee":       in.MonthlyFee,
	} {
		if v != nil && v.IsNegative() {
			return nil, &FieldError{Field: field, Value: v.String(), Reason: "must not be negative"}
		}
	}
	if _, err := s.mustGet(ctx, templateID); err != nil {
		return nil, err
	}

	snap := TermsSnapshot{
		ID:               uuid.NewString(),
		EffectiveFrom:    key,
		Amount:           in.Amount,
		EstimateMin:      in.EstimateMin,
		EstimateMax:      in.EstimateMax,
		InterestRate:     in.InterestRate,
		RemainingBalance: in.RemainingBalance,
		HasMonthlyFee:    in.HasMonthlyFee,
		MonthlyFee:       in.MonthlyFee,
		Note:             in.Note,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.AppendTerms(ctx, templateID, snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// =============================================================================
// PAUSE CRUD
// =============================================================================

// PauseInput is the create/update pause payload.
type PauseInput struct {
	From string
	To   string
	Note string
}

func (in PauseInput) parse() (from, to period.Key, err error) {
	f, err := parsePauseKey("from", in.From)
	if err != nil {
		return "", "", err
	}
	t, err := parsePauseKey("to", in.To)
	if err != nil {
		return "", "", err
	}
	if err := ValidatePause(f, t); err != nil {
		return "", "", err
	}
	return f, t, nil
}

// CreatePause adds a pause window. Overlaps with existing pauses are
// accepted; the resolver treats them as a data-quality condition.
func (s *Service) CreatePause(ctx context.Context, templateID string, in PauseInput) (*PausePeriod, error) {
	from, to, err := in.parse()
	if err != nil {
		return nil, err
	}
	if _, err := s.mustGet(ctx, templateID); err != nil {
		return nil, err
	}
	pause := PausePeriod{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Note:      in.Note,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddPause(ctx, templateID, pause); err != nil {
		return nil, err
	}
	return &pause, nil
}

// UpdatePause edits an existing pause window.
func (s *Service) UpdatePause(ctx context.Context, templateID, pauseID string, in PauseInput) (*PausePeriod, error) {
	from, to, err := in.parse()
	if err != nil {
		return nil, err
	}
	t, err := s.mustGet(ctx, templateID)
	if err != nil {
		return nil, err
	}
	var current *PausePeriod
	for i := range t.Pauses {
		if t.Pauses[i].ID == pauseID {
			current = &t.Pauses[i]
			break
		}
	}
	if current == nil {
		return nil, &NotFoundError{Kind: "pause", ID: pauseID}
	}
	updated := *current
	updated.From = from
	updated.To = to
	updated.Note = in.Note
	if err := s.store.UpdatePause(ctx, templateID, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeletePause removes a pause window.
func (s *Service) DeletePause(ctx context.Context, templateID, pauseID string) error {
	if _, err := s.mustGet(ctx, templateID); err != nil {
		return err
	}
	return s.store.DeletePause(ctx, templateID, pauseID)
}

func (s *Service) mustGet(ctx context.Context, id string) (*Template, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &NotFoundError{Kind: "recurring_expense", ID: id}
	}
	return t, nil
}
