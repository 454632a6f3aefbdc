/*
handlers_test.go - HTTP surface tests against an in-memory database

Tests for:
- Template create/read and legacy type normalization
- Summary projection over payments and pauses
- Payment create/move/delete and the duplicate conflict
- Error status mapping (400/404/409)
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gekoparty/utgifter/store/sqlite"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewRouter(NewHandler(store, nil))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return v
}

func createExpense(t *testing.T, router http.Handler, req TemplateRequest) TemplateDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/recurring-expenses", req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create expense returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeAs[TemplateDTO](t, rec)
}

func utilityRequest() TemplateRequest {
	return TemplateRequest{
		Title:                 "Strøm",
		Type:                  "UTILITY",
		DueDay:                15,
		BillingIntervalMonths: 1,
		StartMonth:            1,
		Amount:                500,
	}
}

// =============================================================================
// TEMPLATE TESTS
// =============================================================================

func TestCreateAndGetTemplate(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	if created.ID == "" {
		t.Fatal("Expected an assigned id")
	}
	if !created.IsActive {
		t.Error("New template should be active")
	}

	rec := doJSON(t, router, http.MethodGet, "/api/recurring-expenses/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Get returned %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeAs[TemplateDTO](t, rec)
	if got.Title != "Strøm" || got.Amount != 500 {
		t.Errorf("Unexpected template: %+v", got)
	}
}

func TestCreateTemplate_LegacyHousingNormalized(t *testing.T) {
	router := newTestRouter(t)
	req := utilityRequest()
	req.Title = "Boliglån"
	req.Type = "HOUSING"
	req.RemainingBalance = 1000000
	req.InterestRate = 4
	req.Amount = 6000

	created := createExpense(t, router, req)
	if created.Type != "MORTGAGE" {
		t.Errorf("Expected HOUSING normalized to MORTGAGE, got %s", created.Type)
	}
}

func TestCreateTemplate_UnknownTypeIs400(t *testing.T) {
	router := newTestRouter(t)
	req := utilityRequest()
	req.Type = "GROCERY"

	rec := doJSON(t, router, http.MethodPost, "/api/recurring-expenses", req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestGetTemplate_UnknownIs404(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/recurring-expenses/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestArchiveAndRestore(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	rec := doJSON(t, router, http.MethodPost, "/api/recurring-expenses/"+created.ID+"/archive", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Archive returned %d", rec.Code)
	}

	// Archived templates are hidden from the default listing
	rec = doJSON(t, router, http.MethodGet, "/api/recurring-expenses", nil)
	if got := decodeAs[[]TemplateDTO](t, rec); len(got) != 0 {
		t.Errorf("Expected empty listing after archive, got %d", len(got))
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/recurring-expenses/"+created.ID+"/restore", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Restore returned %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/recurring-expenses", nil)
	if got := decodeAs[[]TemplateDTO](t, rec); len(got) != 1 {
		t.Errorf("Expected one template after restore, got %d", len(got))
	}
}

// =============================================================================
// TERMS AND PAUSE TESTS
// =============================================================================

func TestChangeTermsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	amount := 600.0
	rec := doJSON(t, router, http.MethodPost,
		"/api/recurring-expenses/"+created.ID+"/terms",
		TermsRequest{PeriodKey: "2025-03", Amount: &amount})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Terms change returned %d: %s", rec.Code, rec.Body.String())
	}
	snap := decodeAs[TermsDTO](t, rec)
	if snap.EffectiveFromPeriodKey != "2025-03" {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/recurring-expenses/"+created.ID, nil)
	got := decodeAs[TemplateDTO](t, rec)
	if len(got.TermsSnapshots) != 1 {
		t.Fatalf("Expected one snapshot, got %d", len(got.TermsSnapshots))
	}
}

func TestChangeTerms_NoFieldsIs400(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	rec := doJSON(t, router, http.MethodPost,
		"/api/recurring-expenses/"+created.ID+"/terms",
		TermsRequest{PeriodKey: "2025-03"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestPauseLifecycle(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())
	base := "/api/recurring-expenses/" + created.ID + "/pause"

	rec := doJSON(t, router, http.MethodPost, base, PauseRequest{From: "2025-06", To: "2025-08"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create pause returned %d: %s", rec.Code, rec.Body.String())
	}
	pause := decodeAs[PauseDTO](t, rec)

	rec = doJSON(t, router, http.MethodPut, base+"/"+pause.ID, PauseRequest{From: "2025-06", To: "2025-09"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Update pause returned %d", rec.Code)
	}
	if got := decodeAs[PauseDTO](t, rec); got.To != "2025-09" {
		t.Errorf("Expected extended pause, got %+v", got)
	}

	rec = doJSON(t, router, http.MethodDelete, base+"/"+pause.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Delete pause returned %d", rec.Code)
	}
}

func TestCreatePause_InvertedRangeIs400(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	rec := doJSON(t, router, http.MethodPost,
		"/api/recurring-expenses/"+created.ID+"/pause",
		PauseRequest{From: "2025-08", To: "2025-06"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

// =============================================================================
// PAYMENT TESTS
// =============================================================================

func TestPaymentLifecycle(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	rec := doJSON(t, router, http.MethodPost, "/api/recurring-payments", CreatePaymentRequest{
		RecurringExpenseID: created.ID,
		PeriodKey:          "2025-01",
		Amount:             549.5,
		PaidDate:           "2025-01-14",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create payment returned %d: %s", rec.Code, rec.Body.String())
	}
	payment := decodeAs[PaymentDTO](t, rec)
	if payment.Status != "PAID" {
		t.Errorf("Expected PAID, got %s", payment.Status)
	}

	// A second payment for the same period conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/recurring-payments", CreatePaymentRequest{
		RecurringExpenseID: created.ID,
		PeriodKey:          "2025-01",
		Amount:             549.5,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for duplicate, got %d", rec.Code)
	}

	// Moving to February frees January
	rec = doJSON(t, router, http.MethodPut, "/api/recurring-payments/"+payment.ID, UpdatePaymentRequest{
		Amount:    549.5,
		PeriodKey: "2025-02",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Move returned %d: %s", rec.Code, rec.Body.String())
	}
	moved := decodeAs[PaymentDTO](t, rec)
	if moved.PeriodKey != "2025-02" {
		t.Errorf("Expected move to 2025-02, got %s", moved.PeriodKey)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/recurring-payments", CreatePaymentRequest{
		RecurringExpenseID: created.ID,
		PeriodKey:          "2025-01",
		Amount:             500,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("January should be free after the move, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/recurring-payments/"+moved.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Delete returned %d", rec.Code)
	}
}

func TestCreatePayment_UnknownExpenseIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/recurring-payments", CreatePaymentRequest{
		RecurringExpenseID: "ghost",
		PeriodKey:          "2025-03",
		Amount:             500,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown expense, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreatePayment_BadPeriodKeyIs400(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	rec := doJSON(t, router, http.MethodPost, "/api/recurring-payments", CreatePaymentRequest{
		RecurringExpenseID: created.ID,
		PeriodKey:          "2025-1",
		Amount:             500,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestDeletePayment_UnknownIs404(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/api/recurring-payments/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestSummaryEndpoint(t *testing.T) {
	router := newTestRouter(t)
	created := createExpense(t, router, utilityRequest())

	rec := doJSON(t, router, http.MethodPost, "/api/recurring-payments", CreatePaymentRequest{
		RecurringExpenseID: created.ID,
		PeriodKey:          currentPeriodKey(),
		Amount:             500,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Create payment returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/recurring-expenses/summary?months=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Summary returned %d: %s", rec.Code, rec.Body.String())
	}
	s := decodeAs[SummaryResponse](t, rec)

	if len(s.Forecast) != 3 {
		t.Fatalf("Expected 3 forecast months, got %d", len(s.Forecast))
	}
	current := s.Forecast[0]
	if current.ItemsCount != 1 {
		t.Fatalf("Expected one item in the current month, got %d", current.ItemsCount)
	}
	if got := current.Items[0].Status; got != "PAID" {
		t.Errorf("Expected current month PAID, got %s", got)
	}
	if current.PaidTotal != 500 {
		t.Errorf("Expected paidTotal 500, got %v", current.PaidTotal)
	}
	if s.Meta.Sum3.Max != 1500 {
		t.Errorf("Expected sum3 max 1500, got %v", s.Meta.Sum3.Max)
	}
}

func TestSummary_BadHorizonIs400(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/recurring-expenses/summary?months=13", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestSummary_FilterIsValidated(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/recurring-expenses/summary?filter=WRONG", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func currentPeriodKey() string {
	now := time.Now().UTC()
	return fmt.Sprintf("%04d-%02d", now.Year(), int(now.Month()))
}
