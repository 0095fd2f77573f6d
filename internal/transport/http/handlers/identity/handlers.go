package identityhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"intranet/internal/domain/access"
	"intranet/internal/domain/audit"
	"intranet/internal/domain/identity"
	"intranet/internal/platform/config"
	"intranet/internal/platform/email"
	"intranet/internal/platform/requestctx"
	"intranet/internal/transport/http/api"
	"intranet/internal/transport/http/middleware"
	"intranet/internal/transport/http/shared"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	Users  *identity.Service
	Access *access.Registry
	Audit  *audit.Service
	Mailer email.Mailer
	Cfg    config.Config
}

func NewHandler(users *identity.Service, registry *access.Registry, auditSvc *audit.Service, mailer email.Mailer, cfg config.Config) *Handler {
	return &Handler{Users: users, Access: registry, Audit: auditSvc, Mailer: mailer, Cfg: cfg}
}

type registerRequest struct {
	EmployeeID string `json:"employeeId"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accessRequest struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

type verifyDepartmentRequest struct {
	Department string `json:"department"`
	AccessCode string `json:"accessCode"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("username", payload.Username, "username is required")
	v.Required("password", payload.Password, "password is required")
	v.Required("name", payload.Name, "name is required")
	v.Required("department", payload.Department, "department is required")
	if v.Reject(w, reqID) {
		return
	}

	profile, err := h.Users.Register(r.Context(), identity.NewUser{
		EmployeeID: payload.EmployeeID,
		Username:   payload.Username,
		Password:   payload.Password,
		Name:       payload.Name,
		Email:      payload.Email,
		Department: payload.Department,
		Position:   payload.Position,
	})
	if err != nil {
		h.failIdentity(w, r, err)
		return
	}

	h.record(r, profile.Username, "user.register", "user", profile.EmployeeID, map[string]string{
		"department": profile.Department,
	})
	api.Created(w, profile, reqID)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	profile, err := h.Users.Authenticate(r.Context(), payload.Username, payload.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		h.failIdentity(w, r, err)
		return
	}

	token, err := identity.GenerateToken(h.Cfg.JWTSecret, identity.Claims{
		UserID:     profile.ID,
		EmployeeID: profile.EmployeeID,
		Username:   profile.Username,
		Department: profile.Department,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	h.record(r, profile.Username, "user.login", "user", profile.EmployeeID, nil)
	api.Success(w, map[string]any{
		"token": token,
		"user":  profile,
	}, reqID)
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	profiles, err := h.Users.ListUsers(r.Context())
	if err != nil {
		h.failIdentity(w, r, err)
		return
	}
	api.Success(w, profiles, reqID)
}

// HandleRequestAccess self-provisions an account for a company email
// address. The generated credentials are returned once in the response and,
// when a mailer is configured, also delivered to the new employee's inbox.
func (h *Handler) HandleRequestAccess(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload accessRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("username", payload.Username, "username is required")
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, reqID) {
		return
	}

	credentials, profile, err := h.Users.RequestAccess(r.Context(), identity.AccessRequest{
		Email:      payload.Email,
		Username:   payload.Username,
		Name:       payload.Name,
		Department: payload.Department,
	}, h.Cfg.AllowedEmailDomain, h.Cfg.TempPassword)
	if errors.Is(err, identity.ErrEmailDomainNotAllowed) {
		api.Fail(w, http.StatusBadRequest, "email_domain_not_allowed", "email must belong to the company domain", reqID)
		return
	}
	if err != nil {
		h.failIdentity(w, r, err)
		return
	}

	h.record(r, profile.Username, "user.request_access", "user", profile.EmployeeID, map[string]string{
		"department": profile.Department,
	})
	h.sendCredentials(r, credentials)

	api.Created(w, map[string]any{
		"credentials": credentials,
		"user":        profile,
	}, reqID)
}

func (h *Handler) HandleVerifyDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var payload verifyDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("department", payload.Department, "department is required")
	if v.Reject(w, reqID) {
		return
	}

	granted := h.Access.Verify(payload.Department, payload.AccessCode)
	if !granted {
		// The department name is safe to audit; the submitted code is not.
		h.record(r, actorName(r), "department.verify_denied", "department", payload.Department, nil)
		api.Fail(w, http.StatusForbidden, "access_denied", "invalid department access code", reqID)
		return
	}

	api.Success(w, map[string]any{
		"department": payload.Department,
		"granted":    true,
	}, reqID)
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("currentPassword", payload.CurrentPassword, "current password is required")
	v.Required("newPassword", payload.NewPassword, "new password is required")
	if v.Reject(w, reqID) {
		return
	}

	if _, err := h.Users.Authenticate(r.Context(), user.Username, payload.CurrentPassword); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	if err := h.Users.ChangePassword(r.Context(), user.UserID, payload.NewPassword); err != nil {
		h.failIdentity(w, r, err)
		return
	}

	h.record(r, user.Username, "user.change_password", "user", user.EmployeeID, nil)
	api.Success(w, map[string]string{"status": "password_changed"}, reqID)
}

func (h *Handler) failIdentity(w http.ResponseWriter, r *http.Request, err error) {
	reqID := requestctx.GetRequestID(r.Context())

	switch {
	case errors.Is(err, identity.ErrDuplicateEmployeeID):
		api.Fail(w, http.StatusConflict, "duplicate_employee_id", "employee id already registered", reqID)
	case errors.Is(err, identity.ErrDuplicateUsername):
		api.Fail(w, http.StatusConflict, "duplicate_username", "username already taken", reqID)
	case errors.Is(err, identity.ErrDuplicateEmail):
		api.Fail(w, http.StatusConflict, "duplicate_email", "email already registered", reqID)
	case errors.Is(err, identity.ErrDuplicateIdentity):
		api.Fail(w, http.StatusConflict, "duplicate_identity", "identity already exists", reqID)
	case errors.Is(err, identity.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
	default:
		slog.Error("identity request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusServiceUnavailable, "store_unavailable", "service temporarily unavailable, try again", reqID)
	}
}

func (h *Handler) record(r *http.Request, actor, action, entity, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	reqID := requestctx.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actor, action, entity, entityID, reqID, shared.ClientIP(r), details); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) sendCredentials(r *http.Request, credentials identity.Credentials) {
	if h.Mailer == nil || credentials.Email == "" {
		return
	}
	body := fmt.Sprintf(
		"Hello,\n\nYour intranet account is ready.\n\nEmployee ID: %s\nUsername: %s\nTemporary password: %s\n\nPlease change your password after your first login.\n",
		credentials.EmployeeID, credentials.Username, credentials.TempPassword,
	)
	if err := h.Mailer.Send(r.Context(), h.Cfg.EmailFrom, credentials.Email, "Your intranet account", body); err != nil {
		slog.Warn("credentials email failed", "to", credentials.Email, "err", err)
	}
}

func actorName(r *http.Request) string {
	if user, ok := middleware.GetUser(r.Context()); ok {
		return user.Username
	}
	return ""
}
