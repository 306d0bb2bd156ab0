package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// HeaderSharerUserID identifies the acting user. The gateway is trusted to
// have authenticated the caller; the server takes the header as-is.
const HeaderSharerUserID = "X-Sharer-User-Id"

// BookingExporter renders all bookings into a downloadable workbook.
type BookingExporter interface {
	Bookings(ctx context.Context) ([]byte, error)
}

// HTTPServer exposes the REST API over users, items, bookings and requests.
type HTTPServer struct {
	cfg      config.HTTPConfig
	users    domain.UserService
	items    domain.ItemService
	bookings domain.BookingService
	requests domain.RequestService
	exporter BookingExporter
	logger   zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(
	cfg config.HTTPConfig,
	users domain.UserService,
	items domain.ItemService,
	bookings domain.BookingService,
	requests domain.RequestService,
	exporter BookingExporter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		exporter: exporter,
		logger:   logger.With().Str("component", "http-server").Logger(),
	}

	handler := requestIDMiddleware(
		loggingMiddleware(&srv.logger,
			metricsMiddleware(
				recoverMiddleware(&srv.logger, srv.routes()))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleGetUsers)
	mux.HandleFunc("GET /users/{userId}", s.handleGetUser)
	mux.HandleFunc("PATCH /users/{userId}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{userId}", s.handleDeleteUser)

	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("GET /items", s.handleGetOwnerItems)
	mux.HandleFunc("GET /items/search", s.handleSearchItems)
	mux.HandleFunc("GET /items/{itemId}", s.handleGetItem)
	mux.HandleFunc("PATCH /items/{itemId}", s.handleUpdateItem)
	mux.HandleFunc("POST /items/{itemId}/comment", s.handleAddComment)

	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /bookings", s.handleGetBookerBookings)
	mux.HandleFunc("GET /bookings/owner", s.handleGetOwnerBookings)
	mux.HandleFunc("GET /bookings/{bookingId}", s.handleGetBooking)
	mux.HandleFunc("PATCH /bookings/{bookingId}", s.handleApproveBooking)

	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests", s.handleGetOwnRequests)
	mux.HandleFunc("GET /requests/all", s.handleGetOtherRequests)
	mux.HandleFunc("GET /requests/{requestId}", s.handleGetRequest)

	mux.HandleFunc("GET /admin/bookings/export", s.handleExportBookings)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sharerID читает идентификатор пользователя из заголовка X-Sharer-User-Id.
func sharerID(r *http.Request) (int64, error) {
	raw := r.Header.Get(HeaderSharerUserID)
	if raw == "" {
		return 0, fmt.Errorf("%s header is required", HeaderSharerUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", HeaderSharerUserID)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
