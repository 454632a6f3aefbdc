/*
Package sqlite provides the SQLite-backed implementation of the recurring
engine's storage interfaces.

PURPOSE:
  Implements recurring.Store (templates, terms snapshots, pauses, payments)
  using SQLite. The same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  recurring_expenses:  template definitions (soft-deleted via is_active)
  terms_snapshots:     effective-dated overrides, unique per
                       (expense, effective_from)
  pause_periods:       inclusive month ranges
  recurring_payments:  the payment ledger

PERIOD KEYS AS TEXT:
  Period keys are stored as "YYYY-MM" TEXT. Lexicographic order equals
  chronological order, so BETWEEN works for window queries without any
  date conversion.

MONEY AS TEXT:
  Decimal values are stored as their canonical string form and parsed back
  with shopspring/decimal, avoiding REAL rounding drift.

TRANSACTIONAL MOVE:
  MovePayment creates the re-keyed row and deletes the old one inside a
  single SQL transaction, implementing recurring.TxPaymentStore. Callers
  without transactional stores fall back to create-then-delete with
  repair-on-read.

WAL MODE:
  SQLite is opened with WAL for better concurrency; a sync.RWMutex guards
  the connection as in-process belt and braces.

USAGE:
  store, err := sqlite.New("./data/utgifter.db")
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - recurring/store.go: interface definitions
  - store/memory:       in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/period"
	"github.com/gekoparty/utgifter/recurring"
)

// Store implements recurring.Store and recurring.TxPaymentStore.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recurring_expenses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		due_day INTEGER NOT NULL DEFAULT 1,
		billing_interval_months INTEGER NOT NULL DEFAULT 1,
		start_month INTEGER NOT NULL DEFAULT 1,
		amount TEXT NOT NULL DEFAULT '0',
		estimate_min TEXT NOT NULL DEFAULT '0',
		estimate_max TEXT NOT NULL DEFAULT '0',
		mortgage_holder TEXT,
		mortgage_kind TEXT,
		remaining_balance TEXT NOT NULL DEFAULT '0',
		interest_rate TEXT NOT NULL DEFAULT '0',
		has_monthly_fee BOOLEAN NOT NULL DEFAULT FALSE,
		monthly_fee TEXT NOT NULL DEFAULT '0',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_type
		ON recurring_expenses(type);
	CREATE INDEX IF NOT EXISTS idx_expenses_active
		ON recurring_expenses(is_active);

	-- Effective-dated overrides. One snapshot per (expense, period):
	-- the change-terms operation is an upsert on that pair.
	CREATE TABLE IF NOT EXISTS terms_snapshots (
		id TEXT PRIMARY KEY,
		recurring_expense_id TEXT NOT NULL
			REFERENCES recurring_expenses(id) ON DELETE CASCADE,
		effective_from TEXT NOT NULL,
		amount TEXT,
		estimate_min TEXT,
		estimate_max TEXT,
		interest_rate TEXT,
		remaining_balance TEXT,
		has_monthly_fee BOOLEAN,
		monthly_fee TEXT,
		note TEXT,
		created_at TEXT NOT NULL,
		UNIQUE(recurring_expense_id, effective_from)
	);

	CREATE INDEX IF NOT EXISTS idx_terms_expense
		ON terms_snapshots(recurring_expense_id, effective_from);

	CREATE TABLE IF NOT EXISTS pause_periods (
		id TEXT PRIMARY KEY,
		recurring_expense_id TEXT NOT NULL
			REFERENCES recurring_expenses(id) ON DELETE CASCADE,
		pause_from TEXT NOT NULL,
		pause_to TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pauses_expense
		ON pause_periods(recurring_expense_id);

	-- Payment ledger. The natural key (expense, period) is indexed but NOT
	-- unique: a partially failed move legitimately leaves two rows until
	-- repair-on-read resolves them.
	CREATE TABLE IF NOT EXISTS recurring_payments (
		id TEXT PRIMARY KEY,
		recurring_expense_id TEXT NOT NULL
			REFERENCES recurring_expenses(id) ON DELETE CASCADE,
		period_key TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PAID',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_natural_key
		ON recurring_payments(recurring_expense_id, period_key);
	CREATE INDEX IF NOT EXISTS idx_payments_period
		ON recurring_payments(period_key);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

func (s *Store) ListTemplates(ctx context.Context, filter recurring.Filter, includeArchived bool) ([]recurring.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, title, type, due_day, billing_interval_months, start_month,
		       amount, estimate_min, estimate_max,
		       mortgage_holder, mortgage_kind, remaining_balance, interest_rate,
		       has_monthly_fee, monthly_fee, is_active, created_at, updated_at
		FROM recurring_expenses
	`
	var (
		clauses []string
		args    []any
	)
	if !includeArchived {
		clauses = append(clauses, "is_active = TRUE")
	}
	if filter != recurring.FilterAll && filter != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(filter))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY title ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring expenses: %w", err)
	}
	defer rows.Close()

	var templates []recurring.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		if err := s.loadChildren(ctx, &templates[i]); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*recurring.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, type, due_day, billing_interval_months, start_month,
		       amount, estimate_min, estimate_max,
		       mortgage_holder, mortgage_kind, remaining_balance, interest_rate,
		       has_monthly_fee, monthly_fee, is_active, created_at, updated_at
		FROM recurring_expenses WHERE id = ?`, id)

	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) SaveTemplate(ctx context.Context, t recurring.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recurring_expenses
		(id, title, type, due_day, billing_interval_months, start_month,
		 amount, estimate_min, estimate_max,
		 mortgage_holder, mortgage_kind, remaining_balance, interest_rate,
		 has_monthly_fee, monthly_fee, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			type = excluded.type,
			due_day = excluded.due_day,
			billing_interval_months = excluded.billing_interval_months,
			start_month = excluded.start_month,
			amount = excluded.amount,
			estimate_min = excluded.estimate_min,
			estimate_max = excluded.estimate_max,
			mortgage_holder = excluded.mortgage_holder,
			mortgage_kind = excluded.mortgage_kind,
			remaining_balance = excluded.remaining_balance,
			interest_rate = excluded.interest_rate,
			has_monthly_fee = excluded.has_monthly_fee,
			monthly_fee = excluded.monthly_fee,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		t.ID, t.Title, string(t.Type), t.DueDay, t.BillingIntervalMonths, int(t.StartMonth),
		t.Amount.String(), t.EstimateMin.String(), t.EstimateMax.String(),
		t.MortgageHolder, t.MortgageKind, t.RemainingBalance.String(), t.InterestRate.String(),
		t.HasMonthlyFee, t.MonthlyFee.String(), t.IsActive,
		t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save recurring expense: %w", err)
	}

	for _, snap := range t.Terms {
		if err := upsertTerms(ctx, tx, t.ID, snap); err != nil {
			return err
		}
	}
	for _, pause := range t.Pauses {
		if err := upsertPause(ctx, tx, t.ID, pause); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) SetArchived(ctx context.Context, id string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE recurring_expenses SET is_active = ?, updated_at = ? WHERE id = ?`,
		!archived, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to archive recurring expense: %w", err)
	}
	return requireRow(res, recurring.ErrTemplateNotFound)
}

func (s *Store) AppendTerms(ctx context.Context, templateID string, snap recurring.TermsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertTerms(ctx, s.db, templateID, snap)
}

func (s *Store) AddPause(ctx context.Context, templateID string, pause recurring.PausePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsertPause(ctx, s.db, templateID, pause)
}

func (s *Store) UpdatePause(ctx context.Context, templateID string, pause recurring.PausePeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE pause_periods SET pause_from = ?, pause_to = ?, note = ?
		WHERE id = ? AND recurring_expense_id = ?`,
		string(pause.From), string(pause.To), pause.Note, pause.ID, templateID)
	if err != nil {
		return fmt.Errorf("failed to update pause: %w", err)
	}
	return requireRow(res, recurring.ErrPauseNotFound)
}

func (s *Store) DeletePause(ctx context.Context, templateID, pauseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM pause_periods WHERE id = ? AND recurring_expense_id = ?`,
		pauseID, templateID)
	if err != nil {
		return fmt.Errorf("failed to delete pause: %w", err)
	}
	return requireRow(res, recurring.ErrPauseNotFound)
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

func (s *Store) ListPayments(ctx context.Context, templateIDs []string, w period.Window) ([]recurring.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(templateIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(templateIDs)), ",")
	args := make([]any, 0, len(templateIDs)+2)
	for _, id := range templateIDs {
		args = append(args, id)
	}
	// Period keys sort lexicographically in chronological order.
	args = append(args, string(w.From), string(w.To))

	query := fmt.Sprintf(`
		SELECT id, recurring_expense_id, period_key, amount, paid_date, status, created_at
		FROM recurring_payments
		WHERE recurring_expense_id IN (%s)
		  AND period_key BETWEEN ? AND ?
		ORDER BY period_key ASC, created_at ASC`, placeholders)

	return s.queryPayments(ctx, query, args...)
}

func (s *Store) GetPayment(ctx context.Context, id string) (*recurring.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queryPayments(ctx, `
		SELECT id, recurring_expense_id, period_key, amount, paid_date, status, created_at
		FROM recurring_payments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) FindPayments(ctx context.Context, templateID string, key period.Key) ([]recurring.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first: the repair-on-read contract.
	return s.queryPayments(ctx, `
		SELECT id, recurring_expense_id, period_key, amount, paid_date, status, created_at
		FROM recurring_payments
		WHERE recurring_expense_id = ? AND period_key = ?
		ORDER BY created_at DESC, id DESC`, templateID, string(key))
}

func (s *Store) CreatePayment(ctx context.Context, p recurring.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertPayment(ctx, s.db, p)
}

func (s *Store) UpdatePayment(ctx context.Context, p recurring.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE recurring_payments SET amount = ?, paid_date = ?, period_key = ? WHERE id = ?`,
		p.Amount.String(), p.PaidDate.UTC().Format(time.RFC3339), string(p.PeriodKey), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return requireRow(res, recurring.ErrPaymentNotFound)
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return requireRow(res, recurring.ErrPaymentNotFound)
}

// MovePayment re-keys a payment atomically: insert the new row and delete
// the old one in a single transaction. Implements recurring.TxPaymentStore.
func (s *Store) MovePayment(ctx context.Context, create recurring.Payment, deleteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPayment(ctx, tx, create); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM recurring_payments WHERE id = ?`, deleteID)
	if err != nil {
		return fmt.Errorf("failed to delete moved payment: %w", err)
	}
	if err := requireRow(res, recurring.ErrPaymentNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertPayment(ctx context.Context, db execer, p recurring.Payment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO recurring_payments
		(id, recurring_expense_id, period_key, amount, paid_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.RecurringExpenseID, string(p.PeriodKey), p.Amount.String(),
		p.PaidDate.UTC().Format(time.RFC3339), string(p.Status),
		p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func upsertTerms(ctx context.Context, db execer, templateID string, snap recurring.TermsSnapshot) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO terms_snapshots
		(id, recurring_expense_id, effective_from, amount, estimate_min, estimate_max,
		 interest_rate, remaining_balance, has_monthly_fee, monthly_fee, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(recurring_expense_id, effective_from) DO UPDATE SET
			amount = excluded.amount,
			estimate_min = excluded.estimate_min,
			estimate_max = excluded.estimate_max,
			interest_rate = excluded.interest_rate,
			remaining_balance = excluded.remaining_balance,
			has_monthly_fee = excluded.has_monthly_fee,
			monthly_fee = excluded.monthly_fee,
			note = excluded.note`,
		snap.ID, templateID, string(snap.EffectiveFrom),
		decimalOrNil(snap.Amount), decimalOrNil(snap.EstimateMin), decimalOrNil(snap.EstimateMax),
		decimalOrNil(snap.InterestRate), decimalOrNil(snap.RemainingBalance),
		boolOrNil(snap.HasMonthlyFee), decimalOrNil(snap.MonthlyFee),
		snap.Note, snap.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert terms snapshot: %w", err)
	}
	return nil
}

func upsertPause(ctx context.Context, db execer, templateID string, pause recurring.PausePeriod) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pause_periods
		(id, recurring_expense_id, pause_from, pause_to, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pause_from = excluded.pause_from,
			pause_to = excluded.pause_to,
			note = excluded.note`,
		pause.ID, templateID, string(pause.From), string(pause.To),
		pause.Note, pause.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert pause: %w", err)
	}
	return nil
}

func (s *Store) loadChildren(ctx context.Context, t *recurring.Template) error {
	termRows, err := s.db.QueryContext(ctx, `
		SELECT id, effective_from, amount, estimate_min, estimate_max,
		       interest_rate, remaining_balance, has_monthly_fee, monthly_fee, note, created_at
		FROM terms_snapshots
		WHERE recurring_expense_id = ?
		ORDER BY effective_from ASC`, t.ID)
	if err != nil {
		return fmt.Errorf("failed to query terms snapshots: %w", err)
	}
	defer termRows.Close()

	t.Terms = nil
	for termRows.Next() {
		var (
			snap                     recurring.TermsSnapshot
			effectiveFrom, createdAt string
			amount, estMin, estMax   sql.NullString
			rate, balance, fee       sql.NullString
			hasFee                   sql.NullBool
			note                     sql.NullString
		)
		if err := termRows.Scan(&snap.ID, &effectiveFrom, &amount, &estMin, &estMax,
			&rate, &balance, &hasFee, &fee, &note, &createdAt); err != nil {
			return fmt.Errorf("failed to scan terms snapshot: %w", err)
		}
		snap.EffectiveFrom = period.Key(effectiveFrom)
		snap.Amount = parseNullDecimal(amount)
		snap.EstimateMin = parseNullDecimal(estMin)
		snap.EstimateMax = parseNullDecimal(estMax)
		snap.InterestRate = parseNullDecimal(rate)
		snap.RemainingBalance = parseNullDecimal(balance)
		if hasFee.Valid {
			v := hasFee.Bool
			snap.HasMonthlyFee = &v
		}
		snap.MonthlyFee = parseNullDecimal(fee)
		snap.Note = note.String
		snap.CreatedAt = parseTime(createdAt)
		t.Terms = append(t.Terms, snap)
	}
	if err := termRows.Err(); err != nil {
		return err
	}

	pauseRows, err := s.db.QueryContext(ctx, `
		SELECT id, pause_from, pause_to, note, created_at
		FROM pause_periods
		WHERE recurring_expense_id = ?
		ORDER BY pause_from ASC, created_at ASC`, t.ID)
	if err != nil {
		return fmt.Errorf("failed to query pauses: %w", err)
	}
	defer pauseRows.Close()

	t.Pauses = nil
	for pauseRows.Next() {
		var (
			pause             recurring.PausePeriod
			from, to, created string
			note              sql.NullString
		)
		if err := pauseRows.Scan(&pause.ID, &from, &to, &note, &created); err != nil {
			return fmt.Errorf("failed to scan pause: %w", err)
		}
		pause.From = period.Key(from)
		pause.To = period.Key(to)
		pause.Note = note.String
		pause.CreatedAt = parseTime(created)
		t.Pauses = append(t.Pauses, pause)
	}
	return pauseRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*recurring.Template, error) {
	var (
		t                      recurring.Template
		typ                    string
		startMonth             int
		amount, estMin, estMax string
		holder, kind           sql.NullString
		balance, rate, fee     string
		createdAt, updatedAt   string
	)
	err := row.Scan(&t.ID, &t.Title, &typ, &t.DueDay, &t.BillingIntervalMonths, &startMonth,
		&amount, &estMin, &estMax, &holder, &kind, &balance, &rate,
		&t.HasMonthlyFee, &fee, &t.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	// Normalize at the read edge: legacy HOUSING rows become MORTGAGE.
	expenseType, err := recurring.NormalizeType(typ)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recurring expense %s: %w", t.ID, err)
	}
	t.Type = expenseType
	t.StartMonth = time.Month(startMonth)
	t.Amount = mustDecimal(amount)
	t.EstimateMin = mustDecimal(estMin)
	t.EstimateMax = mustDecimal(estMax)
	t.MortgageHolder = holder.String
	t.MortgageKind = kind.String
	t.RemainingBalance = mustDecimal(balance)
	t.InterestRate = mustDecimal(rate)
	t.MonthlyFee = mustDecimal(fee)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]recurring.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []recurring.Payment
	for rows.Next() {
		var (
			p                         recurring.Payment
			key, amount, paid, status string
			created                   string
		)
		if err := rows.Scan(&p.ID, &p.RecurringExpenseID, &key, &amount, &paid, &status, &created); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.PeriodKey = period.Key(key)
		p.Amount = mustDecimal(amount)
		p.PaidDate = parseTime(paid)
		p.Status = recurring.PaymentStatus(status)
		p.CreatedAt = parseTime(created)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

func decimalOrNil(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func boolOrNil(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func parseNullDecimal(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid {
		return nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil
	}
	return &d
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
