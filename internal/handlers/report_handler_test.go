package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillside/backend/internal/middleware"
	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/services"
	"github.com/quillside/backend/internal/store/memstore"
)

const testSecret = "test-secret"

func reportTestRouter(t *testing.T) (*chi.Mux, *memstore.MemStore) {
	t.Helper()
	s := memstore.New()
	h := NewReportHandler(services.NewReportService(s))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret))
		r.Post("/api/reports", h.FileReport)
		r.Get("/api/reports", h.ListReports)
		r.Get("/api/reports/{reportId}", h.GetReport)
	})
	return r, s
}

func bearerFor(t *testing.T, userID, username string) string {
	t.Helper()
	token, err := middleware.IssueToken(&models.User{
		ID:          userID,
		Username:    username,
		AccountType: models.AccountCommenter,
		Status:      models.StatusGood,
	}, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestFileReportEndpoint(t *testing.T) {
	body := `{"content_type":"Comment","content_id":"c1","reported_user":"carol","reason":"Spam"}`

	t.Run("files as the authenticated user", func(t *testing.T) {
		router, s := reportTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
		req.Header.Set("Authorization", bearerFor(t, "u-alice", "alice"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Success bool              `json:"success"`
			Data    map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotEmpty(t, resp.Data["report_id"])

		// The reporting_user in the body, if any, is ignored in favor of the
		// token's identity.
		stored, err := s.Reports().FindByID(req.Context(), resp.Data["report_id"])
		require.NoError(t, err)
		assert.Equal(t, "u-alice", stored.ReportingUser)
	})

	t.Run("rejects unauthenticated filings", func(t *testing.T) {
		router, _ := reportTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("duplicate filing is a 400", func(t *testing.T) {
		router, _ := reportTestRouter(t)
		auth := bearerFor(t, "u-alice", "alice")

		for i, want := range []int{http.StatusCreated, http.StatusBadRequest} {
			req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
			req.Header.Set("Authorization", auth)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, want, rec.Code, "request %d", i)
		}
	})

	t.Run("validation errors name the fields", func(t *testing.T) {
		router, _ := reportTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/reports",
			strings.NewReader(`{"content_type":"Photo","reason":""}`))
		req.Header.Set("Authorization", bearerFor(t, "u-alice", "alice"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "content_type")
		assert.Contains(t, resp.Errors, "content_id")
		assert.Contains(t, resp.Errors, "reason")
	})
}

func TestGetReportEndpoint(t *testing.T) {
	t.Run("unknown report is a 404", func(t *testing.T) {
		router, _ := reportTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/reports/r-none", nil)
		req.Header.Set("Authorization", bearerFor(t, "u-dana", "dana"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListReportsEndpoint(t *testing.T) {
	t.Run("bad filter values are a 400", func(t *testing.T) {
		router, _ := reportTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/reports?settled=maybe&page=-1&created_after=01-02-2026", nil)
		req.Header.Set("Authorization", bearerFor(t, "u-dana", "dana"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Errors map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "settled")
		assert.Contains(t, resp.Errors, "page")
		assert.Contains(t, resp.Errors, "created_after")
	})
}
