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

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) FileReport(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.FileReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	// Reports are always filed as the authenticated user.
	req.ReportingUser = p.UserID

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	report, err := h.reports.File(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateReport) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("You have already reported this content"))
			return
		}
		log.Printf("[FileReport] error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to file report"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(map[string]string{"report_id": report.ID}))
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to get report"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(report))
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseReportFilter(r)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	reports, err := h.reports.List(r.Context(), filter)
	if err != nil {
		log.Printf("[ListReports] error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list reports"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(reports))
}

func parseReportFilter(r *http.Request) (models.ReportFilter, map[string]string) {
	q := r.URL.Query()
	errs := make(map[string]string)
	filter := models.ReportFilter{
		ContentType:         q.Get("content_type"),
		ReportedUser:        q.Get("reported_user"),
		ReportingUser:       q.Get("reporting_user"),
		RespondingModerator: q.Get("responding_moderator"),
	}

	if v := q.Get("settled"); v != "" {
		settled, err := strconv.ParseBool(v)
		if err != nil {
			errs["settled"] = "Settled must be a boolean value"
		} else {
			filter.Settled = &settled
		}
	}
	if filter.ContentType != "" && !models.ValidContentType(filter.ContentType) {
		errs["content_type"] = "Must be \"Comment\" or \"BlogPost\""
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			errs["page"] = "Page must be an integer value"
		} else {
			filter.Page = page
		}
	}

	parseDate := func(field string, dst *time.Time) {
		v := q.Get(field)
		if v == "" {
			return
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			errs[field] = "Must be a date in YYYY-MM-DD form"
			return
		}
		*dst = t
	}
	parseDate("created_after", &filter.CreatedAfter)
	parseDate("created_before", &filter.CreatedBefore)
	parseDate("action_after", &filter.ActionAfter)
	parseDate("action_before", &filter.ActionBefore)

	return filter, errs
}
