package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quillside/backend/internal/middleware"
	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/services"
)

type AccountHandler struct {
	accounts  *services.AccountService
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAccountHandler(accounts *services.AccountService, jwtSecret string, jwtTTL time.Duration) *AccountHandler {
	return &AccountHandler{accounts: accounts, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	user, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameExists):
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Username already taken"))
		case errors.Is(err, services.ErrEmailExists):
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Email already registered"))
		default:
			log.Printf("[Register] error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create account"))
		}
		return
	}

	token, err := middleware.IssueToken(user, h.jwtSecret, h.jwtTTL)
	if err != nil {
		log.Printf("[Register] token error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create account"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.AuthResponse{Token: token, User: *user}))
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	user, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid username or password"))
			return
		}
		log.Printf("[Login] error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Login failed"))
		return
	}

	token, err := middleware.IssueToken(user, h.jwtSecret, h.jwtTTL)
	if err != nil {
		log.Printf("[Login] token error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Login failed"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.AuthResponse{Token: token, User: *user}))
}

// Me returns the authenticated user's own record, unredacted.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	user, err := h.accounts.GetByID(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to get account"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(user))
}

// GetUser is the public profile view. Private profiles come back with name
// and email stripped.
func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to get user"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(user.Redacted()))
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), p.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Email already registered"))
		case errors.Is(err, services.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
		default:
			log.Printf("[UpdateProfile] error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update profile"))
		}
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(user))
}

func (h *AccountHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req models.UpdateSettingsRequest
	if err := decodeJSON(r, &req); err != nil || req.Public == nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Must provide a public setting"))
		return
	}

	if err := h.accounts.UpdateSettings(r.Context(), p.UserID, *req.Public); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
			return
		}
		log.Printf("[UpdateSettings] error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update settings"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req models.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), p.UserID, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Old password is incorrect"))
		case errors.Is(err, services.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
		default:
			log.Printf("[ChangePassword] error: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to change password"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
