/*
handlers.go - HTTP API handlers for the recurring expense engine

PURPOSE:
  Exposes the forecast engine and payment ledger via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Summary:
    GET    /api/recurring-expenses/summary   Forecast + reconciliation query

  Templates:
    GET    /api/recurring-expenses           List templates
    POST   /api/recurring-expenses           Create template
    GET    /api/recurring-expenses/{id}      Get template
    PUT    /api/recurring-expenses/{id}      Update template
    POST   /api/recurring-expenses/{id}/archive   Soft-delete
    PATCH  /api/recurring-expenses/{id}/restore   Undo archive

  Terms:
    POST   /api/recurring-expenses/{id}/terms     Append terms snapshot

  Pauses:
    POST   /api/recurring-expenses/{id}/pause
    PUT    /api/recurring-expenses/{id}/pause/{pauseId}
    DELETE /api/recurring-expenses/{id}/pause/{pauseId}

  Payments:
    POST   /api/recurring-payments           Record payment
    PUT    /api/recurring-payments/{id}      Edit or move payment
    DELETE /api/recurring-payments/{id}      Remove payment

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, ledger, service)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate payment for a period)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/recurring"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   recurring.Store
	Engine  *recurring.Engine
	Service *recurring.Service
	Ledger  *recurring.PaymentLedger
	Logger  *slog.Logger
}

// NewHandler creates a new handler wired to the given store.
func NewHandler(store recurring.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:   store,
		Engine:  recurring.NewEngine(store, logger),
		Service: recurring.NewService(store),
		Ledger:  recurring.NewPaymentLedger(store, logger),
		Logger:  logger,
	}
}

// =============================================================================
// SUMMARY HANDLER
// =============================================================================

// GetSummary runs one forecast query over the templates, pauses, and
// payment ledger. Status is recomputed on every call, never read from
// storage.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := recurring.ParseFilter(q.Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	in := recurring.SummaryInput{
		Filter:          filter,
		MonthsForward:   recurring.MaxForwardMonths,
		IncludeArchived: q.Get("includeArchived") == "true",
	}
	if raw := q.Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid months", err)
			return
		}
		in.MonthsForward = n
	}
	if raw := q.Get("pastMonths"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid pastMonths", err)
			return
		}
		in.PastMonths = n
	}

	summary, err := h.Engine.Summary(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

// ListTemplates returns all templates, active ones by default.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	templates, err := h.Store.ListTemplates(r.Context(), recurring.FilterAll, includeArchived)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expenses", err)
		return
	}

	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toTemplateDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTemplate creates a recurring expense template.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.Service.CreateTemplate(r.Context(), req.toTemplate())
	if err != nil {
		writeDomainError(w, "Failed to create expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(*created))
}

// GetTemplate returns one template with its terms snapshots and pauses.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.Store.GetTemplate(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get expense", err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "Expense not found", recurring.ErrTemplateNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(*t))
}

// UpdateTemplate replaces a template's base fields. Terms snapshots,
// pauses, and archive state are managed through their own endpoints and
// survive the update untouched.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.Service.UpdateTemplate(r.Context(), id, req.toTemplate())
	if err != nil {
		writeDomainError(w, "Failed to update expense", err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(*updated))
}

// ArchiveTemplate soft-deletes a template. History stays queryable via
// includeArchived.
func (h *Handler) ArchiveTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Archive(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to archive expense", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived", "id": id})
}

// RestoreTemplate undoes a soft delete.
func (h *Handler) RestoreTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Service.Restore(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to restore expense", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active", "id": id})
}

// =============================================================================
// TERMS HANDLERS
// =============================================================================

// ChangeTerms appends an effective-dated snapshot of changed terms.
// Posting the same periodKey twice updates the existing snapshot instead
// of stacking a second one.
func (h *Handler) ChangeTerms(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req TermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	snap, err := h.Service.ChangeTerms(r.Context(), id, recurring.TermsInput{
		PeriodKey:        req.PeriodKey,
		Amount:           decPtr(req.Amount),
		EstimateMin:      decPtr(req.EstimateMin),
		EstimateMax:      decPtr(req.EstimateMax),
		InterestRate:     decPtr(req.InterestRate),
		RemainingBalance: decPtr(req.RemainingBalance),
		HasMonthlyFee:    req.HasMonthlyFee,
		MonthlyFee:       decPtr(req.MonthlyFee),
		Note:             req.Note,
	})
	if err != nil {
		writeDomainError(w, "Failed to change terms", err)
		return
	}

	writeJSON(w, http.StatusCreated, TermsDTO{
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

// =============================================================================
// PAUSE HANDLERS
// =============================================================================

// CreatePause adds a pause window to a template.
func (h *Handler) CreatePause(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pause, err := h.Service.CreatePause(r.Context(), id, recurring.PauseInput{
		From: req.From,
		To:   req.To,
		Note: req.Note,
	})
	if err != nil {
		writeDomainError(w, "Failed to create pause", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPauseDTO(*pause))
}

// UpdatePause edits an existing pause window.
func (h *Handler) UpdatePause(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pauseID := chi.URLParam(r, "pauseId")
	var req PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pause, err := h.Service.UpdatePause(r.Context(), id, pauseID, recurring.PauseInput{
		From: req.From,
		To:   req.To,
		Note: req.Note,
	})
	if err != nil {
		writeDomainError(w, "Failed to update pause", err)
		return
	}
	writeJSON(w, http.StatusOK, toPauseDTO(*pause))
}

// DeletePause removes a pause window. Periods it covered go back to
// UNPAID/PAID on the next summary query.
func (h *Handler) DeletePause(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pauseID := chi.URLParam(r, "pauseId")
	if err := h.Service.DeletePause(r.Context(), id, pauseID); err != nil {
		writeDomainError(w, "Failed to delete pause", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": pauseID})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// CreatePayment records a payment against a template period. One payment
// per (expense, period); a second create for the same period is a 409.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	paidDate, err := parseDate(req.PaidDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paidDate", err)
		return
	}

	payment, err := h.Ledger.Create(r.Context(), recurring.CreateInput{
		RecurringExpenseID: req.RecurringExpenseID,
		PeriodKey:          req.PeriodKey,
		Amount:             decimal.NewFromFloat(req.Amount),
		PaidDate:           paidDate,
	})
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(*payment))
}

// UpdatePayment edits a payment's amount and date. When the request
// carries a different periodKey the payment moves to that period.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	paidDate, err := parseDate(req.PaidDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paidDate", err)
		return
	}

	payment, err := h.Ledger.Update(r.Context(), id, recurring.UpdateInput{
		Amount:    decimal.NewFromFloat(req.Amount),
		PaidDate:  paidDate,
		PeriodKey: req.PeriodKey,
	})
	if err != nil {
		writeDomainError(w, "Failed to update payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(*payment))
}

// DeletePayment removes a payment. The period flips back to UNPAID on the
// next summary query.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Ledger.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete payment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Too late to change the status; log and move on
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP status codes: validation
// to 400, missing resources to 404, duplicates to 409, everything else
// to 500.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case recurring.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case recurring.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case recurring.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
