package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spotbook/internal/config"
	"spotbook/internal/database"
	"spotbook/internal/domain"
	"spotbook/internal/metrics"
	"spotbook/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the listing, booking and review engines over REST.
type HTTPServer struct {
	cfg      *config.Config
	db       *database.DB
	listings *service.ListingService
	bookings *service.BookingService
	reviews  *service.ReviewService
	auth     *SessionAuth
	logger   zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(
	cfg *config.Config,
	db *database.DB,
	listings *service.ListingService,
	bookings *service.BookingService,
	reviews *service.ReviewService,
	sessions domain.SessionStore,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		db:       db,
		listings: listings,
		bookings: bookings,
		reviews:  reviews,
		logger:   logger.With().Str("component", "http").Logger(),
	}
	srv.auth = NewSessionAuth(cfg.Auth, cfg.RateLimit, sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/spots", srv.handleSpots)
	mux.HandleFunc("/api/v1/spots/current", srv.handleOwnedSpots)
	mux.HandleFunc("/api/v1/spots/", srv.handleSpotSubtree)
	mux.HandleFunc("/api/v1/bookings/current", srv.handleMyBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/reviews/", srv.handleReviewByID)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
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

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

// endpointLabel collapses numeric path segments so the metric cardinality
// stays bounded.
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// errorBody is the uniform error envelope: a human message plus optional
// per-field details.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string, fields map[string]string) {
	writeJSON(w, statusCode, errorBody{Message: message, Errors: fields})
}

// writeServiceError maps a business error onto a status code. Conflicts are
// endpoint-specific: a booking clash answers 403 while a duplicate review or
// address answers 409, so the caller picks the status.
func writeServiceError(w http.ResponseWriter, logger *zerolog.Logger, err error, conflictStatus int) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		logger.Error().Err(err).Msg("unclassified error")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}

	switch svcErr.Kind {
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, svcErr.Message, nil)
	case service.KindForbidden:
		writeError(w, http.StatusForbidden, svcErr.Message, nil)
	case service.KindInvalid:
		writeError(w, http.StatusBadRequest, svcErr.Message, svcErr.Fields)
	case service.KindConflict:
		writeError(w, conflictStatus, svcErr.Message, svcErr.Fields)
	default:
		logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "Internal Server Error", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}
	return true
}

// pathID parses the numeric id segment, answering 404 with the
// entity-specific message when it is not a number.
func pathID(w http.ResponseWriter, raw, notFoundMsg string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, notFoundMsg, nil)
		return 0, false
	}
	return id, true
}
