package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quillside/backend/internal/middleware"
	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/services"
)

// ModerationHandler exposes the moderator console. All routes are mounted
// behind RequireModerator.
type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// GetContent shows reported content to a moderator, bypassing the public
// visibility filters.
func (h *ModerationHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	contentType := chi.URLParam(r, "contentType")
	contentID := chi.URLParam(r, "contentId")

	if !models.ValidContentType(contentType) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Must be \"Comment\" or \"BlogPost\""))
		return
	}

	content, err := h.moderation.GetContent(r.Context(), contentType, contentID)
	if err != nil {
		if errors.Is(err, services.ErrContentNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Content not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to get content"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(content))
}

type moderateContentRequest struct {
	ReportID string `json:"report_id"`
}

// ModerateContent dispatches a report resolution. The action comes in as a
// query parameter, the report id in the body.
func (h *ModerationHandler) ModerateContent(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req moderateContentRequest
	if err := decodeJSON(r, &req); err != nil || req.ReportID == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Must provide report id"))
		return
	}

	action := r.URL.Query().Get("action")
	if !models.ValidAction(action) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Must specify action to take"))
		return
	}

	err := h.moderation.ModerateContent(r.Context(), req.ReportID, action, p.Username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
		case errors.Is(err, services.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Reported user not found"))
		case errors.Is(err, services.ErrContentNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Content not found"))
		case errors.Is(err, services.ErrAlreadySettled):
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Report already settled"))
		default:
			// Underlying cause is logged by the service; the caller only gets
			// a retryable failure.
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Mod action failed"))
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ModerateUser applies account-level actions: status change (with full
// propagation), account type change, or account deletion.
func (h *ModerationHandler) ModerateUser(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	userID := chi.URLParam(r, "userId")
	q := r.URL.Query()

	req := models.ModerateUserRequest{
		AccountStatus: q.Get("account_status"),
		AccountType:   q.Get("account_type"),
		DeleteUser:    q.Get("delete_user") == "true",
	}

	if req.AccountStatus != "" && !models.ValidStatus(req.AccountStatus) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Unrecognizable account status"))
		return
	}
	if req.AccountType != "" && !models.ValidAccountType(req.AccountType) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Unrecognizable account type"))
		return
	}

	err := h.moderation.ModerateUser(r.Context(), p.AccountType, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Forbidden"))
		case errors.Is(err, services.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
		default:
			log.Printf("[ModerateUser] user=%s err=%v", userID, err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Mod action failed"))
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers is the moderator console's paginated user search.
func (h *ModerationHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	q := r.URL.Query()
	errs := make(map[string]string)

	filter := models.UserFilter{
		Username:    q.Get("username"),
		FirstName:   q.Get("first_name"),
		LastName:    q.Get("last_name"),
		Email:       q.Get("email"),
		Status:      q.Get("status"),
		AccountType: q.Get("account_type"),
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			errs["page"] = "Page must be an integer value"
		} else {
			filter.Page = page
		}
	}
	if v := q.Get("created_after"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			errs["created_after"] = "Must be a date in YYYY-MM-DD form"
		} else {
			filter.CreatedAfter = t
		}
	}
	if v := q.Get("created_before"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			errs["created_before"] = "Must be a date in YYYY-MM-DD form"
		} else {
			filter.CreatedBefore = t
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	users, err := h.moderation.ListUsers(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list users"))
		return
	}

	// Moderators see redacted records for non-public profiles; admins see
	// everything.
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if p.AccountType == models.AccountAdmin {
			out = append(out, *u)
			continue
		}
		out = append(out, u.Redacted())
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(out))
}
