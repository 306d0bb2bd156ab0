package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxPageSize = 50

// Server validates request shape and throttles callers before anything
// reaches the core server. Business rules stay on the other side; the
// gateway only rejects requests that could never succeed.
type Server struct {
	cfg     config.GatewayConfig
	client  *Client
	limiter domain.RateLimitRepository
	logger  zerolog.Logger
	server  *http.Server
	now     func() time.Time

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewServer(cfg config.GatewayConfig, client *Client, limiter domain.RateLimitRepository, logger zerolog.Logger) *Server {
	srv := &Server{
		cfg:     cfg,
		client:  client,
		limiter: limiter,
		logger:  logger.With().Str("component", "gateway").Logger(),
		now:     time.Now,
		local:   make(map[string]*rate.Limiter),
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.rateLimitMiddleware(srv.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleListQuery)
	mux.HandleFunc("GET /users/{userId}", s.handlePathID("userId"))
	mux.HandleFunc("PATCH /users/{userId}", s.handlePatchUser)
	mux.HandleFunc("DELETE /users/{userId}", s.handlePathID("userId"))

	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("GET /items", s.handleListQuery)
	mux.HandleFunc("GET /items/search", s.handleListQuery)
	mux.HandleFunc("GET /items/{itemId}", s.handlePathID("itemId"))
	mux.HandleFunc("PATCH /items/{itemId}", s.handlePatchItem)
	mux.HandleFunc("POST /items/{itemId}/comment", s.handleAddComment)

	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /bookings", s.handleListQuery)
	mux.HandleFunc("GET /bookings/owner", s.handleListQuery)
	mux.HandleFunc("GET /bookings/{bookingId}", s.handlePathID("bookingId"))
	mux.HandleFunc("PATCH /bookings/{bookingId}", s.handleApproveBooking)

	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests", s.proxy)
	mux.HandleFunc("GET /requests/all", s.handleListQuery)
	mux.HandleFunc("GET /requests/{requestId}", s.handlePathID("requestId"))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("gateway listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// rateLimitMiddleware throttles by sharer id, falling back to the remote
// address for endpoints that do not require identity.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(api.HeaderSharerUserID)
		if key == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			key = "addr:" + host
		}

		allowed, err := s.allow(r.Context(), key)
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("rate limit check failed")
			// При сбое лимитера пропускаем запрос, а не блокируем всех
			allowed = true
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allow(ctx context.Context, key string) (bool, error) {
	window := time.Duration(s.cfg.RateLimit.WindowSeconds) * time.Second
	if s.limiter != nil {
		return s.limiter.CheckRateLimit(ctx, key, s.cfg.RateLimit.Requests, window)
	}

	s.mu.Lock()
	lim, ok := s.local[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(s.cfg.RateLimit.Requests)/window.Seconds()), s.cfg.RateLimit.Requests)
		s.local[key] = lim
	}
	s.mu.Unlock()

	return lim.Allow(), nil
}

// proxy forwards the request untouched and writes back whatever the core
// server replied.
func (s *Server) proxy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	s.forward(w, r, body)
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	resp, err := s.client.Forward(r.Context(), r.Method, r.URL.Path, r.URL.Query(), body, r.Header)
	if err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to reach core server")
		writeError(w, http.StatusBadGateway, "core server is unavailable")
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// readBody consumes and decodes the JSON body, returning the raw bytes for
// forwarding.
func readBody(w http.ResponseWriter, r *http.Request, dst any) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return body, true
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.UserRequest
	body, ok := readBody(w, r, &req)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be blank")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "email must be a valid address")
		return
	}
	s.forward(w, r, body)
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	body, ok := readBody(w, r, &req)
	if !ok {
		return
	}
	if req.Email != nil && !validEmail(*req.Email) {
		writeError(w, http.StatusBadRequest, "email must be a valid address")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be blank")
		return
	}
	s.forward(w, r, body)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req api.ItemRequest
	body, ok := readBody(w, r, &req)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be blank")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description must not be blank")
		return
	}
	if req.Available == nil {
		writeError(w, http.StatusBadRequest, "available is required")
		return
	}
	s.forward(w, r, body)
}

func (s *Server) handlePatchItem(w http.ResponseWriter, r *http.Request) {
	var req api.ItemRequest
	body, ok := readBody(w, r, &req)
	if !ok {
		return
	}
	s.forward(w, r, body)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req api.CommentRequest
	body, ok := readBody(w, r, &req)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be blank")
		return
	}
	s.forward(w, r, body)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req api.BookingRequest
	body, ok := readBody(w, r, &req)
	if !ok {
		return
	}
	if req.ItemID <= 0 {
		writeError(w, http.StatusBadRequest, "itemId must be a positive integer")
		return
	}
	if req.Start == nil || req.End == nil {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}
	start, end := req.Start.Time(), req.End.Time()
	if !start.Before(end) {
		writeError(w, http.StatusBadRequest, "start must be before end")
		return
	}
	if start.Before(s.now()) {
		writeError(w, http.StatusBadRequest, "start must not be in the past")
		return
	}
	s.forward(w, r, body)
}

func (s *Server) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := strconv.ParseBool(r.URL.Query().Get("approved")); err != nil {
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}
	s.proxy(w, r)
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req api.RequestCreateRequest
	body, ok := readBody(w, r, &req)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description must not be blank")
		return
	}
	s.forward(w, r, body)
}

// handleListQuery checks paging bounds before proxying list endpoints.
func (s *Server) handleListQuery(w http.ResponseWriter, r *http.Request) {
	if msg, ok := validatePaging(r); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	s.proxy(w, r)
}

func (s *Server) handlePathID(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a positive integer", name))
			return
		}
		s.proxy(w, r)
	}
}

func validatePaging(r *http.Request) (string, bool) {
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil || from < 0 {
			return fmt.Sprintf("from must be a non-negative integer, got %q", raw), false
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxPageSize {
			return fmt.Sprintf("size must be between 1 and %d, got %q", maxPageSize, raw), false
		}
	}
	return "", true
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, api.ErrorResponse{
		Error:       http.StatusText(statusCode),
		Description: message,
	})
}
