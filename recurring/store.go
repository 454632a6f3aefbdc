/*
store.go - Persistence interfaces for the recurring engine

PURPOSE:
  The engine is a read-side projection over mutable stores. These
  repository-style interfaces are everything it needs from persistence;
  the HTTP framework and database driver stay external collaborators.

IMPLEMENTATIONS:
  store/memory: in-memory maps (tests/dev)
  store/sqlite: SQLite with WAL (production shape)
*/
package recurring

import (
	"context"

	"github.com/gekoparty/utgifter/period"
)

// TemplateStore persists recurring expense templates together with their
// terms snapshots and pause windows.
type TemplateStore interface {
	// ListTemplates returns templates matching the filter. Archived
	// templates (IsActive=false) are included only when requested.
	// Terms are returned sorted ascending by effective-from key.
	ListTemplates(ctx context.Context, filter Filter, includeArchived bool) ([]Template, error)

	GetTemplate(ctx context.Context, id string) (*Template, error)

	// SaveTemplate inserts or replaces a template definition. Terms and
	// pauses on the template are persisted as given.
	SaveTemplate(ctx context.Context, t Template) error

	// SetArchived toggles the soft-delete flag. History stays intact.
	SetArchived(ctx context.Context, id string, archived bool) error

	// AppendTerms upserts a snapshot keyed by its effective-from period.
	AppendTerms(ctx context.Context, templateID string, snap TermsSnapshot) error

	AddPause(ctx context.Context, templateID string, pause PausePeriod) error
	UpdatePause(ctx context.Context, templateID string, pause PausePeriod) error
	DeletePause(ctx context.Context, templateID, pauseID string) error
}

// PaymentStore persists the payment ledger.
type PaymentStore interface {
	// ListPayments returns payments for the given templates whose period
	// key falls inside the window.
	ListPayments(ctx context.Context, templateIDs []string, w period.Window) ([]Payment, error)

	GetPayment(ctx context.Context, id string) (*Payment, error)

	// FindPayments returns all rows for a natural key, most recently
	// created first. More than one row is a repairable anomaly, not an
	// error.
	FindPayments(ctx context.Context, templateID string, key period.Key) ([]Payment, error)

	CreatePayment(ctx context.Context, p Payment) error
	UpdatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id string) error
}

// TxPaymentStore is implemented by stores that can move a payment between
// periods atomically. The ledger prefers it when available and falls back
// to create-then-delete otherwise.
type TxPaymentStore interface {
	PaymentStore
	MovePayment(ctx context.Context, create Payment, deleteID string) error
}

// Store is the full persistence surface the engine composes over.
type Store interface {
	TemplateStore
	PaymentStore
}
