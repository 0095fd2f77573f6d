package payslipshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"intranet/internal/domain/audit"
	"intranet/internal/domain/payslips"
	"intranet/internal/platform/requestctx"
	"intranet/internal/transport/http/api"
	"intranet/internal/transport/http/middleware"
	"intranet/internal/transport/http/shared"
)

type Handler struct {
	Payslips *payslips.Service
	Audit    *audit.Service
}

func NewHandler(service *payslips.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Payslips: service, Audit: auditSvc}
}

type createRequest struct {
	EmployeeID  string               `json:"employeeId"`
	Month       string               `json:"month"`
	Year        int                  `json:"year"`
	Snapshot    payslips.Snapshot    `json:"snapshot"`
	Amounts     payslips.Amounts     `json:"amounts"`
	Bank        payslips.BankDetails `json:"bank"`
	PSFNo       string               `json:"psfNo"`
	ReferenceNo string               `json:"referenceNo"`
}

type amountsRequest struct {
	Amounts payslips.Amounts `json:"amounts"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("month", payload.Month, "month is required")
	v.Positive("year", payload.Year, "year is required")
	if v.Reject(w, reqID) {
		return
	}

	payslip, err := h.Payslips.Create(r.Context(), payslips.CreateInput{
		EmployeeID:  payload.EmployeeID,
		Month:       payload.Month,
		Year:        payload.Year,
		Snapshot:    payload.Snapshot,
		Amounts:     payload.Amounts,
		Bank:        payload.Bank,
		PSFNo:       payload.PSFNo,
		ReferenceNo: payload.ReferenceNo,
	})
	if err != nil {
		h.failPayslips(w, r, err)
		return
	}

	h.record(r, "payslip.create", payslip.ID, map[string]any{
		"employeeId": payslip.EmployeeID,
		"period":     fmt.Sprintf("%s %d", payslip.Month, payslip.Year),
	})
	api.Created(w, payslip, reqID)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	payslip, err := h.Payslips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.failPayslips(w, r, err)
		return
	}
	api.Success(w, payslip, reqID)
}

func (h *Handler) HandleGetByPeriod(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", "year must be a number", reqID)
		return
	}

	payslip, err := h.Payslips.GetByPeriod(r.Context(), chi.URLParam(r, "employeeId"), chi.URLParam(r, "month"), year)
	if err != nil {
		h.failPayslips(w, r, err)
		return
	}
	api.Success(w, payslip, reqID)
}

func (h *Handler) HandleListForEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	out, err := h.Payslips.ListForEmployee(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		h.failPayslips(w, r, err)
		return
	}
	api.Success(w, out, reqID)
}

// HandleRecomputeAmounts replaces the full monetary input set and re-derives
// the stored aggregates server-side. Client-supplied totals are never
// trusted.
func (h *Handler) HandleRecomputeAmounts(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	var payload amountsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	payslip, err := h.Payslips.RecomputeAmounts(r.Context(), id, payload.Amounts)
	if err != nil {
		h.failPayslips(w, r, err)
		return
	}

	h.record(r, "payslip.amounts", payslip.ID, map[string]any{
		"netPay": payslip.NetPay,
	})
	api.Success(w, payslip, reqID)
}

func (h *Handler) HandleAdvanceStatus(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	var payload statusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("status", payload.Status, "target status is required")
	if v.Reject(w, reqID) {
		return
	}

	payslip, err := h.Payslips.AdvanceStatus(r.Context(), id, payload.Status)
	if err != nil {
		h.failPayslips(w, r, err)
		return
	}

	h.record(r, "payslip.status", payslip.ID, map[string]string{
		"status": payslip.Status,
	})
	api.Success(w, payslip, reqID)
}

func (h *Handler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	payslip, err := h.Payslips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.failPayslips(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
		fmt.Sprintf("payslip-%s-%s-%d.pdf", payslip.EmployeeID, payslip.Month, payslip.Year)))
	if err := payslips.RenderPDF(w, payslip); err != nil {
		slog.Error("payslip pdf render failed", "id", payslip.ID, "err", err)
	}
}

func (h *Handler) failPayslips(w http.ResponseWriter, r *http.Request, err error) {
	reqID := requestctx.GetRequestID(r.Context())

	switch {
	case errors.Is(err, payslips.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", reqID)
	case errors.Is(err, payslips.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", reqID)
	case errors.Is(err, payslips.ErrDuplicatePeriod):
		api.Fail(w, http.StatusConflict, "duplicate_period", "payslip already exists for this employee and period", reqID)
	case errors.Is(err, payslips.ErrDuplicateReference):
		api.Fail(w, http.StatusConflict, "duplicate_reference", "reference number already in use", reqID)
	case errors.Is(err, payslips.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), reqID)
	case errors.Is(err, payslips.ErrInvalidAmount):
		api.Fail(w, http.StatusBadRequest, "invalid_amount", err.Error(), reqID)
	case errors.Is(err, payslips.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
	default:
		slog.Error("payslip request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusServiceUnavailable, "store_unavailable", "service temporarily unavailable, try again", reqID)
	}
}

func (h *Handler) record(r *http.Request, action, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	actor := ""
	if user, ok := middleware.GetUser(r.Context()); ok {
		actor = user.Username
	}
	reqID := requestctx.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actor, action, "payslip", entityID, reqID, shared.ClientIP(r), details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
