/*
ledger.go - Payment ledger with natural-key reconciliation

PURPOSE:
  Wraps the payment store with the ledger's business rules.

  INVARIANT: at most one PAID payment per (recurringExpenseId, periodKey).

  The invariant can be violated transiently: moving a payment to another
  period is create-then-delete, two independent writes, and a failed delete
  leaves a harmless duplicate. The ledger therefore repairs on read — the
  most recently created row wins — rather than treating duplicates as a
  crash. Create-before-delete is the safer order: the failure mode is a
  detectable duplicate, not data loss.

OPERATIONS:
  Find:   natural-key lookup with duplicate repair
  Create: rejects an existing natural key (outside of moves)
  Update: amount/paid-date edit; a changed period key becomes a move
  Delete: by payment id
  Move:   atomic when the store supports it, create-then-delete otherwise

SEE ALSO:
  - store.go:    PaymentStore / TxPaymentStore
  - forecast.go: PaymentIndex, the bulk read-side counterpart
*/
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/period"
)

// PaymentLedger enforces the natural-key invariant over a PaymentStore.
type PaymentLedger struct {
	store     PaymentStore
	templates TemplateStore  // nil when the store cannot resolve templates
	tx        TxPaymentStore // nil when the store has no transactional move
	logger    *slog.Logger
}

// NewPaymentLedger wraps a payment store. If the store also implements
// TemplateStore, creates are checked against the template set; if it
// implements TxPaymentStore, moves run in one transaction.
func NewPaymentLedger(store PaymentStore, logger *slog.Logger) *PaymentLedger {
	l := &PaymentLedger{store: store, logger: logger}
	if logger == nil {
		l.logger = slog.Default()
	}
	if ts, ok := store.(TemplateStore); ok {
		l.templates = ts
	}
	if tx, ok := store.(TxPaymentStore); ok {
		l.tx = tx
	}
	return l
}

// CreateInput is the payload for recording a payment.
type CreateInput struct {
	RecurringExpenseID string
	PeriodKey          string
	Amount             decimal.Decimal
	PaidDate           time.Time
}

// UpdateInput is the payload for editing a payment. A PeriodKey different
// from the stored one turns the edit into a move.
type UpdateInput struct {
	Amount    decimal.Decimal
	PaidDate  time.Time
	PeriodKey string
}

// Find returns the payment for a natural key, repairing duplicates on read.
// Returns nil when no payment exists.
func (l *PaymentLedger) Find(ctx context.Context, templateID string, key string) (*Payment, error) {
	k, err := parsePeriodKey(key)
	if err != nil {
		return nil, err
	}
	rows, err := l.store.FindPayments(ctx, templateID, k)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		l.logger.Warn("duplicate payments for natural key, preferring newest",
			"recurring_expense_id", templateID,
			"period_key", key,
			"count", len(rows))
	}
	// Store contract: most recently created first.
	return &rows[0], nil
}

// Create records a payment. The expense must exist and the natural key
// must not already have a payment.
func (l *PaymentLedger) Create(ctx context.Context, in CreateInput) (*Payment, error) {
	p, err := l.buildPayment(in)
	if err != nil {
		return nil, err
	}
	if l.templates != nil {
		t, err := l.templates.GetTemplate(ctx, in.RecurringExpenseID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, &NotFoundError{Kind: "recurring_expense", ID: in.RecurringExpenseID}
		}
	}
	existing, err := l.Find(ctx, in.RecurringExpenseID, in.PeriodKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrDuplicatePayment, in.RecurringExpenseID, in.PeriodKey)
	}
	if err := l.store.CreatePayment(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update edits a payment's amount and paid date. When the period key
// changes, the edit is a move: a new row is created for the new period and
// the old row deleted under a new id.
func (l *PaymentLedger) Update(ctx context.Context, paymentID string, in UpdateInput) (*Payment, error) {
	current, err := l.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &NotFoundError{Kind: "payment", ID: paymentID}
	}
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}

	key := current.PeriodKey
	if in.PeriodKey != "" {
		key, err = parsePeriodKey(in.PeriodKey)
		if err != nil {
			return nil, err
		}
	}

	if key == current.PeriodKey {
		updated := *current
		updated.Amount = in.Amount
		if !in.PaidDate.IsZero() {
			updated.PaidDate = in.PaidDate.UTC()
		}
		if err := l.store.UpdatePayment(ctx, updated); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	return l.move(ctx, *current, key, in)
}

// Delete removes a payment by id.
func (l *PaymentLedger) Delete(ctx context.Context, paymentID string) error {
	current, err := l.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if current == nil {
		return &NotFoundError{Kind: "payment", ID: paymentID}
	}
	return l.store.DeletePayment(ctx, paymentID)
}

// move re-keys a payment to a different period. Create-before-delete: a
// failed delete leaves a duplicate that Find repairs, never a lost row.
func (l *PaymentLedger) move(ctx context.Context, old Payment, newKey period.Key, in UpdateInput) (*Payment, error) {
	next := Payment{
		ID:                 uuid.NewString(),
		RecurringExpenseID: old.RecurringExpenseID,
		PeriodKey:          newKey,
		Amount:             in.Amount,
		PaidDate:           old.PaidDate,
		Status:             PaymentPaid,
		CreatedAt:          time.Now().UTC(),
	}
	if !in.PaidDate.IsZero() {
		next.PaidDate = in.PaidDate.UTC()
	}

	if l.tx != nil {
		if err := l.tx.MovePayment(ctx, next, old.ID); err != nil {
			return nil, err
		}
		return &next, nil
	}

	if err := l.store.CreatePayment(ctx, next); err != nil {
		return nil, err
	}
	if err := l.store.DeletePayment(ctx, old.ID); err != nil {
		// The new row is in place; the duplicate is repaired on read.
		l.logger.Warn("payment move: delete of old row failed, duplicate left behind",
			"payment_id", old.ID,
			"recurring_expense_id", old.RecurringExpenseID,
			"old_period", string(old.PeriodKey),
			"new_period", string(newKey),
			"error", err)
	}
	return &next, nil
}

func (l *PaymentLedger) buildPayment(in CreateInput) (*Payment, error) {
	key, err := parsePeriodKey(in.PeriodKey)
	if err != nil {
		return nil, err
	}
	if in.RecurringExpenseID == "" {
		return nil, &FieldError{Field: "recurringExpenseId", Value: "", Reason: "required"}
	}
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	paid := in.PaidDate
	if paid.IsZero() {
		paid = time.Now()
	}
	return &Payment{
		ID:                 uuid.NewString(),
		RecurringExpenseID: in.RecurringExpenseID,
		PeriodKey:          key,
		Amount:             in.Amount,
		PaidDate:           paid.UTC(),
		Status:             PaymentPaid,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &FieldError{Field: "amount", Value: amount.String(), Reason: "must not be negative"}
	}
	return nil
}
