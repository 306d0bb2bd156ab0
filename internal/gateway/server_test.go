package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method   string
	Path     string
	Query    string
	Body     string
	SharerID string
}

func setupGateway(t *testing.T, requests int) (*Server, *recordedRequest, *httptest.Server) {
	t.Helper()

	var last recordedRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		last = recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			Query:    r.URL.RawQuery,
			Body:     string(body),
			SharerID: r.Header.Get(api.HeaderSharerUserID),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	t.Cleanup(backend.Close)

	cfg := config.GatewayConfig{
		Port:      0,
		ServerURL: backend.URL,
		RateLimit: config.RateLimitConfig{Requests: requests, WindowSeconds: 60},
	}
	srv := NewServer(cfg, NewClient(backend.URL), nil, zerolog.Nop())
	srv.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return srv, &last, backend
}

func doRequest(srv *Server, method, target, body string, sharerID string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if sharerID != "" {
		req.Header.Set(api.HeaderSharerUserID, sharerID)
	}
	rec := httptest.NewRecorder()
	srv.rateLimitMiddleware(srv.routes()).ServeHTTP(rec, req)
	return rec
}

func errorDescription(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Description
}

func TestGatewayValidation(t *testing.T) {
	srv, last, _ := setupGateway(t, 100)

	t.Run("CreateUserBlankName", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/users", `{"name":"  ","email":"a@b.c"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorDescription(t, rec), "name")
		assert.Empty(t, last.Path)
	})

	t.Run("CreateUserBadEmail", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/users", `{"name":"Ann","email":"not-an-email"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("CreateUserForwarded", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/users", `{"name":"Ann","email":"ann@example.com"}`, "")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/users", last.Path)
		assert.Contains(t, last.Body, "ann@example.com")
		assert.JSONEq(t, `{"id":1}`, rec.Body.String())
	})

	t.Run("PatchUserBadEmailRejected", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPatch, "/users/5", `{"email":"broken"}`, "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("PatchUserNameOnlyForwarded", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPatch, "/users/5", `{"name":"Bob"}`, "1")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/users/5", last.Path)
	})

	t.Run("CreateItemMissingAvailable", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/items", `{"name":"Drill","description":"power drill"}`, "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorDescription(t, rec), "available")
	})

	t.Run("CreateItemForwardsSharerHeader", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/items", `{"name":"Drill","description":"power drill","available":true}`, "42")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "42", last.SharerID)
	})

	t.Run("BookingStartAfterEnd", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/bookings",
			`{"itemId":1,"start":"2025-06-12T10:00:00","end":"2025-06-10T10:00:00"}`, "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorDescription(t, rec), "before end")
	})

	t.Run("BookingStartInPast", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/bookings",
			`{"itemId":1,"start":"2025-05-01T10:00:00","end":"2025-06-10T10:00:00"}`, "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorDescription(t, rec), "past")
	})

	t.Run("BookingValidForwarded", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/bookings",
			`{"itemId":1,"start":"2025-06-10T10:00:00","end":"2025-06-12T10:00:00"}`, "1")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/bookings", last.Path)
	})

	t.Run("ApproveRequiresBoolQuery", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPatch, "/bookings/3?approved=maybe", "", "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(srv, http.MethodPatch, "/bookings/3?approved=true", "", "1")
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "approved=true", last.Query)
	})

	t.Run("CommentBlankText", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/items/1/comment", `{"text":"   "}`, "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RequestBlankDescription", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/requests", `{"description":""}`, "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("PagingBounds", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/requests/all?from=-1", "", "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(srv, http.MethodGet, "/requests/all?size=51", "", "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(srv, http.MethodGet, "/requests/all?from=0&size=10", "", "1")
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("NonPositivePathID", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/users/abc", "", "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(srv, http.MethodGet, "/users/0", "", "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidJSONBody", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/users", `{broken`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGatewayRateLimit(t *testing.T) {
	srv, _, _ := setupGateway(t, 3)

	for i := 0; i < 3; i++ {
		rec := doRequest(srv, http.MethodGet, "/users/1", "", "7")
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(srv, http.MethodGet, "/users/1", "", "7")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Другой пользователь не задет лимитом первого
	rec = doRequest(srv, http.MethodGet, "/users/1", "", "8")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGatewayBackendDown(t *testing.T) {
	srv, _, backend := setupGateway(t, 100)
	backend.Close()

	rec := doRequest(srv, http.MethodGet, "/users/1", "", "1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
