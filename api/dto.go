/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal domain model (decimal money, typed period keys) from the wire
  contract (plain numbers, YYYY-MM strings).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Decimals cross the wire as JSON numbers; the handlers convert with
  decimal.NewFromFloat / Decimal.Float64 at the boundary only.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/recurring"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TemplateDTO represents a recurring expense template in API responses.
// The legacy HOUSING type alias never appears here; output is canonical.
type TemplateDTO struct {
	ID                    string     `json:"id"`
	Title                 string     `json:"title"`
	Type                  string     `json:"type"`
	DueDay                int        `json:"dueDay"`
	BillingIntervalMonths int        `json:"billingIntervalMonths"`
	StartMonth            int        `json:"startMonth"`
	Amount                float64    `json:"amount"`
	EstimateMin           float64    `json:"estimateMin"`
	EstimateMax           float64    `json:"estimateMax"`
	MortgageHolder        string     `json:"mortgageHolder,omitempty"`
	MortgageKind          string     `json:"mortgageKind,omitempty"`
	RemainingBalance      float64    `json:"remainingBalance"`
	InterestRate          float64    `json:"interestRate"`
	HasMonthlyFee         bool       `json:"hasMonthlyFee"`
	MonthlyFee            float64    `json:"monthlyFee"`
	IsActive              bool       `json:"isActive"`
	TermsSnapshots        []TermsDTO `json:"termsSnapshots"`
	PausePeriods          []PauseDTO `json:"pausePeriods"`
}

// TemplateRequest is the create/update template payload. Type accepts the
// legacy HOUSING alias, normalized on read.
type TemplateRequest struct {
	Title                 string  `json:"title"`
	Type                  string  `json:"type"`
	DueDay                int     `json:"dueDay"`
	BillingIntervalMonths int     `json:"billingIntervalMonths"`
	StartMonth            int     `json:"startMonth"`
	Amount                float64 `json:"amount"`
	EstimateMin           float64 `json:"estimateMin"`
	EstimateMax           float64 `json:"estimateMax"`
	MortgageHolder        string  `json:"mortgageHolder"`
	MortgageKind          string  `json:"mortgageKind"`
	RemainingBalance      float64 `json:"remainingBalance"`
	InterestRate          float64 `json:"interestRate"`
	HasMonthlyFee         bool    `json:"hasMonthlyFee"`
	MonthlyFee            float64 `json:"monthlyFee"`
}

// TermsDTO represents an effective-dated terms snapshot.
type TermsDTO struct {
	ID                     string   `json:"id"`
	EffectiveFromPeriodKey string   `json:"effectiveFromPeriodKey"`
	Amount                 *float64 `json:"amount,omitempty"`
	EstimateMin            *float64 `json:"estimateMin,omitempty"`
	EstimateMax            *float64 `json:"estimateMax,omitempty"`
	InterestRate           *float64 `json:"interestRate,omitempty"`
	RemainingBalance       *float64 `json:"remainingBalance,omitempty"`
	HasMonthlyFee          *bool    `json:"hasMonthlyFee,omitempty"`
	MonthlyFee             *float64 `json:"monthlyFee,omitempty"`
	Note                   string   `json:"note,omitempty"`
}

// TermsRequest is the change-terms payload. Omitted fields do not override.
type TermsRequest struct {
	PeriodKey        string   `json:"periodKey"`
	Amount           *float64 `json:"amount,omitempty"`
	EstimateMin      *float64 `json:"estimateMin,omitempty"`
	EstimateMax      *float64 `json:"estimateMax,omitempty"`
	InterestRate     *float64 `json:"interestRate,omitempty"`
	RemainingBalance *float64 `json:"remainingBalance,omitempty"`
	HasMonthlyFee    *bool    `json:"hasMonthlyFee,omitempty"`
	MonthlyFee       *float64 `json:"monthlyFee,omitempty"`
	Note             string   `json:"note,omitempty"`
}

// PauseDTO represents a pause window.
type PauseDTO struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Note string `json:"note,omitempty"`
}

// PauseRequest is the create/update pause payload.
type PauseRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Note string `json:"note,omitempty"`
}

// PaymentDTO represents a payment ledger row.
type PaymentDTO struct {
	ID                 string  `json:"id"`
	RecurringExpenseID string  `json:"recurringExpenseId"`
	PeriodKey          string  `json:"periodKey"`
	Amount             float64 `json:"amount"`
	PaidDate           string  `json:"paidDate"`
	Status             string  `json:"status"`
}

// CreatePaymentRequest records a payment for a period. All payments are
// created PAID; skipped/paused is derived at read time, never stored.
type CreatePaymentRequest struct {
	RecurringExpenseID string  `json:"recurringExpenseId"`
	PeriodKey          string  `json:"periodKey"`
	Amount             float64 `json:"amount"`
	PaidDate           string  `json:"paidDate"`
}

// UpdatePaymentRequest edits a payment. A periodKey differing from the
// stored one moves the payment to the new period.
type UpdatePaymentRequest struct {
	Amount    float64 `json:"amount"`
	PaidDate  string  `json:"paidDate"`
	PeriodKey string  `json:"periodKey,omitempty"`
}

// ExpectedDTO is the forecast value for one item.
type ExpectedDTO struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Fixed  float64 `json:"fixed"`
	Source string  `json:"source"`
}

// ActualDTO is the reconciled payment attached to an item.
type ActualDTO struct {
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
	PaidDate  string  `json:"paidDate"`
}

// MortgageDTO is the amortization estimate for mortgage items.
type MortgageDTO struct {
	EstInterest  float64 `json:"estInterest"`
	EstPrincipal float64 `json:"estPrincipal"`
	MonthsLeft   *int    `json:"monthsLeft"`
	Degenerate   bool    `json:"degenerate,omitempty"`
}

// ForecastItemDTO is one obligation instance for one period.
type ForecastItemDTO struct {
	RecurringExpenseID string       `json:"recurringExpenseId"`
	Title              string       `json:"title"`
	Type               string       `json:"type"`
	PeriodKey          string       `json:"periodKey"`
	DueDate            string       `json:"dueDate"`
	Expected           ExpectedDTO  `json:"expected"`
	Actual             *ActualDTO   `json:"actual"`
	Status             string       `json:"status"`
	PauseID            string       `json:"pauseId,omitempty"`
	Mortgage           *MortgageDTO `json:"mortgage,omitempty"`
}

// ForecastMonthDTO is the per-month rollup.
type ForecastMonthDTO struct {
	Key         string            `json:"key"`
	Date        string            `json:"date"`
	Items       []ForecastItemDTO `json:"items"`
	ExpectedMin float64           `json:"expectedMin"`
	ExpectedMax float64           `json:"expectedMax"`
	PaidTotal   float64           `json:"paidTotal"`
	ItemsCount  int               `json:"itemsCount"`
}

// Sum3DTO aggregates the first three months from today forward.
type Sum3DTO struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Paid float64 `json:"paid"`
}

// SummaryResponse is the full forecast query response.
type SummaryResponse struct {
	Expenses  []TemplateDTO      `json:"expenses"`
	Forecast  []ForecastMonthDTO `json:"forecast"`
	NextBills []ForecastItemDTO  `json:"nextBills"`
	Meta      MetaDTO            `json:"meta"`
}

type MetaDTO struct {
	Sum3 Sum3DTO `json:"sum3"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

const dateLayout = "2006-01-02"

func f64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func f64Ptr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := f64(*d)
	return &f
}

func decPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func toTemplateDTO(t recurring.Template) TemplateDTO {
	dto := TemplateDTO{
		ID:                    t.ID,
		Title:                 t.Title,
		Type:                  string(t.Type),
		DueDay:                t.DueDay,
		BillingIntervalMonths: t.BillingIntervalMonths,
		StartMonth:            int(t.StartMonth),
		Amount:                f64(t.Amount),
		EstimateMin:           f64(t.EstimateMin),
		EstimateMax:           f64(t.EstimateMax),
		MortgageHolder:        t.MortgageHolder,
		MortgageKind:          t.MortgageKind,
		RemainingBalance:      f64(t.RemainingBalance),
		InterestRate:          f64(t.InterestRate),
		HasMonthlyFee:         t.HasMonthlyFee,
		MonthlyFee:            f64(t.MonthlyFee),
		IsActive:              t.IsActive,
		TermsSnapshots:        make([]TermsDTO, 0, len(t.Terms)),
		PausePeriods:          make([]PauseDTO, 0, len(t.Pauses)),
	}
	for _, snap := range t.Terms {
		dto.TermsSnapshots = append(dto.TermsSnapshots, TermsDTO{
			ID:                     snap.ID,
			EffectiveFromPeriodKey: string(snap.EffectiveFrom),
			Amount:                 f64Ptr(snap.Amount),
			EstimateMin:            f64Ptr(snap.EstimateMin),
			EstimateMax:            f64Ptr(snap.EstimateMax),
			InterestRate:           f64Ptr(snap.InterestRate),
			RemainingBalance:       f64Ptr(snap.RemainingBalance),
			HasMonthlyFee:          snap.HasMonthlyFee,
			MonthlyFee:             f64Ptr(snap.MonthlyFee),
			Note:                   snap.Note,
		})
	}
	for _, pause := range t.Pauses {
		dto.PausePeriods = append(dto.PausePeriods, toPauseDTO(pause))
	}
	return dto
}

func toPauseDTO(p recurring.PausePeriod) PauseDTO {
	return PauseDTO{
		ID:   p.ID,
		From: string(p.From),
		To:   string(p.To),
		Note: p.Note,
	}
}

func toPaymentDTO(p recurring.Payment) PaymentDTO {
	return PaymentDTO{
		ID:                 p.ID,
		RecurringExpenseID: p.RecurringExpenseID,
		PeriodKey:          string(p.PeriodKey),
		Amount:             f64(p.Amount),
		PaidDate:           p.PaidDate.Format(dateLayout),
		Status:             string(p.Status),
	}
}

func toItemDTO(item recurring.ForecastItem) ForecastItemDTO {
	dto := ForecastItemDTO{
		RecurringExpenseID: item.RecurringExpenseID,
		Title:              item.Title,
		Type:               string(item.Type),
		PeriodKey:          string(item.PeriodKey),
		DueDate:            item.DueDate.Format(dateLayout),
		Expected: ExpectedDTO{
			Min:    f64(item.Expected.Min),
			Max:    f64(item.Expected.Max),
			Fixed:  f64(item.Expected.Fixed),
			Source: item.Expected.Source,
		},
		Status:  string(item.Status),
		PauseID: item.PauseID,
	}
	if item.Actual != nil {
		dto.Actual = &ActualDTO{
			PaymentID: item.Actual.PaymentID,
			Amount:    f64(item.Actual.Amount),
			PaidDate:  item.Actual.PaidDate.Format(dateLayout),
		}
	}
	if item.Mortgage != nil {
		dto.Mortgage = &MortgageDTO{
			EstInterest:  f64(item.Mortgage.Interest),
			EstPrincipal: f64(item.Mortgage.Principal),
			MonthsLeft:   item.Mortgage.MonthsLeft,
			Degenerate:   item.Mortgage.Degenerate,
		}
	}
	return dto
}

func toItemDTOs(items []recurring.ForecastItem) []ForecastItemDTO {
	dtos := make([]ForecastItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(item)
	}
	return dtos
}

func toSummaryResponse(s *recurring.Summary) SummaryResponse {
	resp := SummaryResponse{
		Expenses:  make([]TemplateDTO, len(s.Expenses)),
		Forecast:  make([]ForecastMonthDTO, len(s.Forecast)),
		NextBills: toItemDTOs(s.NextBills),
		Meta: MetaDTO{Sum3: Sum3DTO{
			Min:  f64(s.Meta.Sum3.Min),
			Max:  f64(s.Meta.Sum3.Max),
			Paid: f64(s.Meta.Sum3.Paid),
		}},
	}
	for i, t := range s.Expenses {
		resp.Expenses[i] = toTemplateDTO(t)
	}
	for i, m := range s.Forecast {
		resp.Forecast[i] = ForecastMonthDTO{
			Key:         string(m.Key),
			Date:        m.Date.Format(dateLayout),
			Items:       toItemDTOs(m.Items),
			ExpectedMin: f64(m.ExpectedMin),
			ExpectedMax: f64(m.ExpectedMax),
			PaidTotal:   f64(m.PaidTotal),
			ItemsCount:  m.ItemsCount,
		}
	}
	return resp
}

func (r TemplateRequest) toTemplate() recurring.Template {
	return recurring.Template{
		Title:                 r.Title,
		Type:                  recurring.ExpenseType(r.Type),
		DueDay:                r.DueDay,
		BillingIntervalMonths: r.BillingIntervalMonths,
		StartMonth:            time.Month(r.StartMonth),
		Amount:                decimal.NewFromFloat(r.Amount),
		EstimateMin:           decimal.NewFromFloat(r.EstimateMin),
		EstimateMax:           decimal.NewFromFloat(r.EstimateMax),
		MortgageHolder:        r.MortgageHolder,
		MortgageKind:          r.MortgageKind,
		RemainingBalance:      decimal.NewFromFloat(r.RemainingBalance),
		InterestRate:          decimal.NewFromFloat(r.InterestRate),
		HasMonthlyFee:         r.HasMonthlyFee,
		MonthlyFee:            decimal.NewFromFloat(r.MonthlyFee),
	}
}
