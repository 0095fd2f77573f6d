package payslipshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"intranet/internal/domain/payslips"
	"intranet/internal/transport/http/api"
)

type fakeStore struct {
	slips   []payslips.Payslip
	people  map[string][3]string
	nextSeq int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		people: map[string][3]string{
			"EMP-GEN-001": {"Kwame Mensah", "technical", "Employee"},
		},
	}
}

func (f *fakeStore) Insert(_ context.Context, payslip payslips.Payslip) (payslips.Payslip, error) {
	if _, ok := f.people[payslip.EmployeeID]; !ok {
		return payslips.Payslip{}, payslips.ErrEmployeeNotFound
	}
	for _, existing := range f.slips {
		if existing.EmployeeID == payslip.EmployeeID &&
			strings.EqualFold(existing.Month, payslip.Month) &&
			existing.Year == payslip.Year {
			return payslips.Payslip{}, payslips.ErrDuplicatePeriod
		}
		if payslip.ReferenceNo != "" && existing.ReferenceNo == payslip.ReferenceNo {
			return payslips.Payslip{}, payslips.ErrDuplicateReference
		}
	}
	f.nextSeq++
	payslip.ID = fmt.Sprintf("ps-%03d", f.nextSeq)
	payslip.CreatedAt = time.Now()
	payslip.UpdatedAt = payslip.CreatedAt
	f.slips = append(f.slips, payslip)
	return payslip, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (payslips.Payslip, error) {
	for _, payslip := range f.slips {
		if payslip.ID == id {
			return payslip, nil
		}
	}
	return payslips.Payslip{}, payslips.ErrNotFound
}

func (f *fakeStore) GetByPeriod(_ context.Context, employeeID, month string, year int) (payslips.Payslip, error) {
	for _, payslip := range f.slips {
		if payslip.EmployeeID == employeeID && payslip.Month == month && payslip.Year == year {
			return payslip, nil
		}
	}
	return payslips.Payslip{}, payslips.ErrNotFound
}

func (f *fakeStore) ListForEmployee(_ context.Context, employeeID string) ([]payslips.Payslip, error) {
	var out []payslips.Payslip
	for _, payslip := range f.slips {
		if payslip.EmployeeID == employeeID {
			out = append(out, payslip)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateAmounts(_ context.Context, payslip payslips.Payslip) error {
	for i := range f.slips {
		if f.slips[i].ID == payslip.ID {
			payslip.Status = f.slips[i].Status
			payslip.CreatedAt = f.slips[i].CreatedAt
			payslip.UpdatedAt = time.Now()
			f.slips[i] = payslip
			return nil
		}
	}
	return payslips.ErrNotFound
}

func (f *fakeStore) UpdateStatus(_ context.Context, id, from, to string) (bool, error) {
	for i := range f.slips {
		if f.slips[i].ID == id {
			if f.slips[i].Status != from {
				return false, nil
			}
			f.slips[i].Status = to
			f.slips[i].UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, payslips.ErrNotFound
}

func (f *fakeStore) EmployeeDetails(_ context.Context, employeeID string) (string, string, string, error) {
	person, ok := f.people[employeeID]
	if !ok {
		return "", "", "", payslips.ErrEmployeeNotFound
	}
	return person[0], person[1], person[2], nil
}

func newTestRouter() (*chi.Mux, *fakeStore) {
	store := newFakeStore()
	handler := NewHandler(payslips.NewService(store), nil)

	router := chi.NewRouter()
	router.Post("/payslips", handler.HandleCreate)
	router.Get("/payslips/{id}", handler.HandleGet)
	router.Get("/payslips/{id}/pdf", handler.HandlePDF)
	router.Put("/payslips/{id}/amounts", handler.HandleRecomputeAmounts)
	router.Post("/payslips/{id}/status", handler.HandleAdvanceStatus)
	router.Get("/employees/{employeeId}/payslips", handler.HandleListForEmployee)
	router.Get("/employees/{employeeId}/payslips/{month}/{year}", handler.HandleGetByPeriod)
	return router, store
}

func doJSON(t *testing.T, router http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var envelope api.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func sampleCreate() createRequest {
	return createRequest{
		EmployeeID: "EMP-GEN-001",
		Month:      "January",
		Year:       2026,
		Amounts: payslips.Amounts{
			AnnualSalary: decimal.RequireFromString("42000.00"),
			Earnings: payslips.Earnings{
				BasicSalaryAmount: decimal.RequireFromString("3500.00"),
				FuelAllowance:     decimal.RequireFromString("150.50"),
			},
			Deductions: payslips.Deductions{
				SSFEmployee: decimal.RequireFromString("192.50"),
				IncomeTax:   decimal.RequireFromString("410.00"),
			},
		},
		ReferenceNo: "REF-2026-001",
	}
}

func TestHandleCreateComputesAggregates(t *testing.T) {
	router, store := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/payslips", sampleCreate())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(store.slips) != 1 {
		t.Fatalf("expected one stored payslip, got %d", len(store.slips))
	}
	stored := store.slips[0]
	if stored.TotalEarnings.StringFixed(2) != "3650.50" {
		t.Fatalf("total earnings: got %s", stored.TotalEarnings.StringFixed(2))
	}
	if stored.TotalDeductions.StringFixed(2) != "602.50" {
		t.Fatalf("total deductions: got %s", stored.TotalDeductions.StringFixed(2))
	}
	if stored.NetPay.StringFixed(2) != "3048.00" {
		t.Fatalf("net pay: got %s", stored.NetPay.StringFixed(2))
	}
	if stored.Status != payslips.StatusDraft {
		t.Fatalf("expected draft status, got %s", stored.Status)
	}
	if stored.Snapshot.EmployeeName != "Kwame Mensah" || stored.Snapshot.Region != payslips.DefaultRegion {
		t.Fatalf("snapshot not resolved: %+v", stored.Snapshot)
	}
}

func TestHandleCreateDuplicatePeriod(t *testing.T) {
	router, _ := newTestRouter()

	if rec := doJSON(t, router, http.MethodPost, "/payslips", sampleCreate()); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}

	duplicate := sampleCreate()
	duplicate.ReferenceNo = "REF-2026-002"
	rec := doJSON(t, router, http.MethodPost, "/payslips", duplicate)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != "duplicate_period" {
		t.Fatalf("expected duplicate_period, got %+v", envelope.Error)
	}
}

func TestHandleCreateUnknownEmployee(t *testing.T) {
	router, _ := newTestRouter()

	payload := sampleCreate()
	payload.EmployeeID = "EMP-GEN-999"
	rec := doJSON(t, router, http.MethodPost, "/payslips", payload)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != "employee_not_found" {
		t.Fatalf("expected employee_not_found, got %+v", envelope.Error)
	}
}

func TestHandleCreateNegativeAmount(t *testing.T) {
	router, store := newTestRouter()

	payload := sampleCreate()
	payload.Amounts.Deductions.Loans = decimal.RequireFromString("-5.00")
	rec := doJSON(t, router, http.MethodPost, "/payslips", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != "invalid_amount" {
		t.Fatalf("expected invalid_amount, got %+v", envelope.Error)
	}
	if len(store.slips) != 0 {
		t.Fatal("rejected payslip must not be persisted")
	}
}

func TestHandleGetByPeriodNormalizesMonth(t *testing.T) {
	router, _ := newTestRouter()

	if rec := doJSON(t, router, http.MethodPost, "/payslips", sampleCreate()); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/employees/EMP-GEN-001/payslips/JANUARY/2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAdvanceStatusWalksForwardOnly(t *testing.T) {
	router, store := newTestRouter()

	if rec := doJSON(t, router, http.MethodPost, "/payslips", sampleCreate()); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}
	id := store.slips[0].ID

	approve := doJSON(t, router, http.MethodPost, "/payslips/"+id+"/status", statusRequest{Status: payslips.StatusApproved})
	if approve.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", approve.Code, approve.Body.String())
	}

	pay := doJSON(t, router, http.MethodPost, "/payslips/"+id+"/status", statusRequest{Status: payslips.StatusPaid})
	if pay.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d", pay.Code)
	}

	back := doJSON(t, router, http.MethodPost, "/payslips/"+id+"/status", statusRequest{Status: payslips.StatusDraft})
	if back.Code != http.StatusConflict {
		t.Fatalf("backwards move: expected 409, got %d", back.Code)
	}
	envelope := decodeEnvelope(t, back)
	if envelope.Error == nil || envelope.Error.Code != "invalid_transition" {
		t.Fatalf("expected invalid_transition, got %+v", envelope.Error)
	}
}

func TestHandleRecomputeAmounts(t *testing.T) {
	router, store := newTestRouter()

	if rec := doJSON(t, router, http.MethodPost, "/payslips", sampleCreate()); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}
	id := store.slips[0].ID

	update := amountsRequest{
		Amounts: payslips.Amounts{
			AnnualSalary: decimal.RequireFromString("42000.00"),
			Earnings: payslips.Earnings{
				BasicSalaryAmount: decimal.RequireFromString("5000.00"),
				Bonus:             decimal.RequireFromString("1250.00"),
			},
			Deductions: payslips.Deductions{
				IncomeTax: decimal.RequireFromString("1375.00"),
			},
		},
	}
	rec := doJSON(t, router, http.MethodPut, "/payslips/"+id+"/amounts", update)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored := store.slips[0]
	if stored.TotalEarnings.StringFixed(2) != "6250.00" {
		t.Fatalf("total earnings after recompute: got %s", stored.TotalEarnings.StringFixed(2))
	}
	if stored.NetPay.StringFixed(2) != "4875.00" {
		t.Fatalf("net pay after recompute: got %s", stored.NetPay.StringFixed(2))
	}
}

func TestHandlePDFStreamsDocument(t *testing.T) {
	router, store := newTestRouter()

	if rec := doJSON(t, router, http.MethodPost, "/payslips", sampleCreate()); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}
	id := store.slips[0].ID

	rec := doJSON(t, router, http.MethodGet, "/payslips/"+id+"/pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content type: got %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a PDF document body")
	}
}

func TestHandleListForEmployee(t *testing.T) {
	router, _ := newTestRouter()

	first := sampleCreate()
	if rec := doJSON(t, router, http.MethodPost, "/payslips", first); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}
	second := sampleCreate()
	second.Month = "February"
	second.ReferenceNo = "REF-2026-002"
	if rec := doJSON(t, router, http.MethodPost, "/payslips", second); rec.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/employees/EMP-GEN-001/payslips", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	items, ok := envelope.Data.([]any)
	if !ok {
		t.Fatalf("unexpected data shape: %T", envelope.Data)
	}
	if len(items) != 2 {
		t.Fatalf("expected two payslips, got %d", len(items))
	}
}
