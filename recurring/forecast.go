/*
forecast.go - The forecast aggregator

PURPOSE:
  Composes the calendar, terms resolver, pause resolver, mortgage
  calculator and payment ledger into the summary the dashboard consumes:
  per-period obligation instances rolled up into per-month totals, a
  next-bills list, and a three-month summary, over both forward and
  backward horizons.

THE CENTRAL INVARIANT:
  Status is a pure function of (template, terms timeline, pauses, payment
  ledger, period key), recomputed on every query. Nothing here is
  persisted, so there is no stored status to drift from the underlying
  truth after late edits: the next read always reflects the latest state.
  Pause takes precedence over payment lookup — a paused period is never
  reported PAID even if a stray payment exists for it.

FAILURE ISOLATION:
  A single bad template must not prevent forecasting the others. Templates
  failing validation are logged and excluded; data-quality conditions
  (overlapping pauses, payments in paused periods, duplicate ledger rows)
  are logged and the computation continues with a best-effort view.

QUERY FLOW:
  1. Enumerate the window [today - past, today + forward]
  2. Load templates (once) and payments (once) for the window
  3. Per template x due period: resolve terms, pause, payment -> item
  4. Group items into months, roll up totals
  5. Derive next-bills and the 3-month summary
*/
package recurring

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/period"
)

// Horizon limits for summary queries, matching what the dashboard offers.
const (
	MaxPastMonths    = 24
	MaxForwardMonths = 12
)

// Engine is the stateless read-side projection. Safe for concurrent use;
// every query fetches its inputs once and computes synchronously.
type Engine struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a forecast engine over the given store.
func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the engine's notion of "now". For tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// SummaryInput are the parameters of a forecast query.
type SummaryInput struct {
	Filter          Filter
	MonthsForward   int
	PastMonths      int
	IncludeArchived bool
}

// Summary runs one forecast query.
func (e *Engine) Summary(ctx context.Context, in SummaryInput) (*Summary, error) {
	if in.MonthsForward < 0 || in.MonthsForward > MaxForwardMonths {
		return nil, &FieldError{Field: "months", Value: in.MonthsForward, Reason: "must be 0-12"}
	}
	if in.PastMonths < 0 || in.PastMonths > MaxPastMonths {
		return nil, &FieldError{Field: "pastMonths", Value: in.PastMonths, Reason: "must be 0-24"}
	}

	today := e.now().UTC().Truncate(24 * time.Hour)
	thisMonth := period.FromTime(today)
	window := period.Around(thisMonth, in.PastMonths, in.MonthsForward)

	templates, err := e.store.ListTemplates(ctx, in.Filter, in.IncludeArchived)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}
	payments, err := e.store.ListPayments(ctx, ids, window)
	if err != nil {
		return nil, err
	}
	index := BuildPaymentIndex(payments, e.logger)

	months := newMonthBuilder(window)
	for _, t := range templates {
		if err := ValidateTemplate(t); err != nil {
			e.logger.Error("excluding template from forecast",
				"recurring_expense_id", t.ID,
				"title", t.Title,
				"error", err)
			continue
		}
		for _, k := range t.DuePeriods(window) {
			months.add(e.buildItem(t, k, index))
		}
	}

	forecast := months.finish()
	return &Summary{
		Expenses:  templates,
		Forecast:  forecast,
		NextBills: nextBills(forecast, today),
		Meta:      SummaryMeta{Sum3: sumThree(forecast, thisMonth)},
	}, nil
}

// buildItem computes one obligation instance. This is where the four
// resolvers meet.
func (e *Engine) buildItem(t Template, k period.Key, index PaymentIndex) ForecastItem {
	terms := t.ResolveTerms(k)
	pause, overlapping := t.ResolvePause(k)
	if overlapping {
		e.logger.Warn("overlapping pauses cover period, using first match",
			"recurring_expense_id", t.ID,
			"period_key", string(k))
	}
	payment := index.Find(t.ID, k)

	item := ForecastItem{
		RecurringExpenseID: t.ID,
		Title:              t.Title,
		Type:               t.Type,
		PeriodKey:          k,
		DueDate:            t.DueDate(k),
		Expected:           terms.Expected,
		Status:             ComputeStatus(pause, payment),
	}
	if pause != nil {
		item.PauseID = pause.ID
		if payment != nil {
			e.logger.Warn("payment recorded for paused period",
				"recurring_expense_id", t.ID,
				"period_key", string(k),
				"payment_id", payment.ID)
		}
	}
	if payment != nil && pause == nil {
		item.Actual = &Actual{
			PaymentID: payment.ID,
			Amount:    payment.Amount,
			PaidDate:  payment.PaidDate,
		}
	}
	if t.Type.IsMortgage() {
		est := DeriveMortgage(terms, terms.Expected.Fixed)
		item.Mortgage = &est
	}
	return item
}

// ComputeStatus derives an item's status. Pure function per query; pause
// wins over payment.
func ComputeStatus(pause *PausePeriod, payment *Payment) Status {
	switch {
	case pause != nil:
		return StatusPaused
	case payment != nil:
		return StatusPaid
	default:
		return StatusUnpaid
	}
}

// =============================================================================
// PAYMENT INDEX - Bulk read-side natural-key lookup
// =============================================================================

type naturalKey struct {
	templateID string
	key        period.Key
}

// PaymentIndex maps natural keys to their single reconciled payment.
type PaymentIndex map[naturalKey]Payment

// BuildPaymentIndex indexes a loaded payment slice by natural key,
// repairing duplicates: the most recently created row wins, the condition
// is logged. Mirrors PaymentLedger.Find for the bulk path.
func BuildPaymentIndex(payments []Payment, logger *slog.Logger) PaymentIndex {
	if logger == nil {
		logger = slog.Default()
	}
	index := make(PaymentIndex, len(payments))
	for _, p := range payments {
		nk := naturalKey{templateID: p.RecurringExpenseID, key: p.PeriodKey}
		if existing, ok := index[nk]; ok {
			logger.Warn("duplicate payments for natural key, preferring newest",
				"recurring_expense_id", p.RecurringExpenseID,
				"period_key", string(p.PeriodKey))
			// Same tie-break as the stores' read order: created_at, then id.
			if p.CreatedAt.Before(existing.CreatedAt) {
				continue
			}
			if p.CreatedAt.Equal(existing.CreatedAt) && p.ID <= existing.ID {
				continue
			}
		}
		index[nk] = p
	}
	return index
}

// Find returns the payment for a natural key, or nil.
func (idx PaymentIndex) Find(templateID string, k period.Key) *Payment {
	if p, ok := idx[naturalKey{templateID: templateID, key: k}]; ok {
		return &p
	}
	return nil
}

// =============================================================================
// MONTH ROLLUP
// =============================================================================

// monthBuilder accumulates items into one ForecastMonth per window month.
// Every month in the window appears in the output, items or not.
type monthBuilder struct {
	order []period.Key
	byKey map[period.Key]*ForecastMonth
}

func newMonthBuilder(w period.Window) *monthBuilder {
	b := &monthBuilder{byKey: make(map[period.Key]*ForecastMonth, w.Months())}
	for _, k := range w.Keys() {
		b.order = append(b.order, k)
		b.byKey[k] = &ForecastMonth{Key: k, Date: k.Time()}
	}
	return b
}

func (b *monthBuilder) add(item ForecastItem) {
	m, ok := b.byKey[item.PeriodKey]
	if !ok {
		return
	}
	m.Items = append(m.Items, item)
	m.ItemsCount++
	// Paused items are fully excluded from the expected totals and from
	// the paid total, stray payments included.
	if item.Status == StatusPaused {
		return
	}
	m.ExpectedMin = m.ExpectedMin.Add(item.Expected.MinAmount())
	m.ExpectedMax = m.ExpectedMax.Add(item.Expected.MaxAmount())
	if item.Status == StatusPaid && item.Actual != nil {
		m.PaidTotal = m.PaidTotal.Add(item.Actual.Amount)
	}
}

func (b *monthBuilder) finish() []ForecastMonth {
	out := make([]ForecastMonth, 0, len(b.order))
	for _, k := range b.order {
		m := b.byKey[k]
		sort.SliceStable(m.Items, func(i, j int) bool {
			if !m.Items[i].DueDate.Equal(m.Items[j].DueDate) {
				return m.Items[i].DueDate.Before(m.Items[j].DueDate)
			}
			return m.Items[i].Title < m.Items[j].Title
		})
		out = append(out, *m)
	}
	return out
}

// nextBills flattens upcoming items across months: due today or later,
// not paused, ascending by due date.
func nextBills(forecast []ForecastMonth, today time.Time) []ForecastItem {
	var bills []ForecastItem
	for _, m := range forecast {
		for _, item := range m.Items {
			if item.Status == StatusPaused || item.DueDate.Before(today) {
				continue
			}
			bills = append(bills, item)
		}
	}
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].DueDate.Before(bills[j].DueDate)
	})
	return bills
}

// sumThree aggregates the first three forecast months from the current
// month forward.
func sumThree(forecast []ForecastMonth, thisMonth period.Key) Sum3 {
	var (
		sum   Sum3
		taken int
	)
	sum.Min, sum.Max, sum.Paid = decimal.Zero, decimal.Zero, decimal.Zero
	for _, m := range forecast {
		if m.Key.Before(thisMonth) {
			continue
		}
		sum.Min = sum.Min.Add(m.ExpectedMin)
		sum.Max = sum.Max.Add(m.ExpectedMax)
		sum.Paid = sum.Paid.Add(m.PaidTotal)
		taken++
		if taken == 3 {
			break
		}
	}
	return sum
}
