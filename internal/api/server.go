package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/vovakirdan/tui-snake/internal/leaderboard"
)

// Version is reported by the health endpoint.
var Version = "1.0.0"

// maxBodyBytes bounds the size of a submission body.
const maxBodyBytes = 1 << 16

// Options configures optional parts of the server.
type Options struct {
	Logger    *log.Logger
	Metrics   *Metrics // nil disables /metrics
	Hub       *Hub     // nil disables /ws
	RateLimit int      // Submissions per minute per client, 0 disables
}

// Server is the leaderboard REST API.
type Server struct {
	svc     *leaderboard.Service
	hub     *Hub
	metrics *Metrics
	limiter *clientLimiter
	logger  *log.Logger
	router  *mux.Router
	handler http.Handler
}

// NewServer creates the API server and subscribes the hub and metrics to
// the service's submission events.
func NewServer(svc *leaderboard.Service, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		svc:     svc,
		hub:     opts.Hub,
		metrics: opts.Metrics,
		logger:  logger,
		router:  mux.NewRouter(),
	}
	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit)
	}
	if s.metrics != nil {
		svc.Subscribe(s.metrics.ObserveEvent)
	}
	if s.hub != nil {
		svc.Subscribe(s.hub.Publish)
	}

	s.setupRoutes()
	// Outside the router so unmatched requests are logged and get an ID too
	s.handler = requestID(s.accessLog(s.router))
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Use(routeTemplate)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/health/db", s.handleDBHealth).Methods(http.MethodGet)

	// Registered on the root router; a subrouter answers 404 instead of 405
	// on a method mismatch.
	s.router.HandleFunc("/api/v1/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/leaderboard", s.rateLimit(s.handleSubmit)).Methods(http.MethodPost)
	// Must be registered before the {username} pattern
	s.router.HandleFunc("/api/v1/leaderboard/stats/summary", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/leaderboard/{username}", s.handleUserScores).Methods(http.MethodGet)

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, leaderboard.NotFound("Resource not found"))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code:    "METHOD_NOT_ALLOWED",
			Message: "Method not allowed",
			Details: map[string]any{},
		}})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Response bodies

type errorDetail struct {
	Code    leaderboard.Code `json:"code"`
	Message string           `json:"message"`
	Details map[string]any   `json:"details"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type pageMeta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type pageBody struct {
	Data []leaderboard.Entry `json:"data"`
	Meta pageMeta            `json:"meta"`
}

func newPageBody(p leaderboard.Page) pageBody {
	data := p.Entries
	if data == nil {
		data = []leaderboard.Entry{}
	}
	return pageBody{
		Data: data,
		Meta: pageMeta{Total: p.Total, Limit: p.Limit, Offset: p.Offset, HasMore: p.HasMore},
	}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Client went away, nothing left to do
	json.NewEncoder(w).Encode(data)
}

// respondError writes err in the error envelope. Server side failures are
// logged with their cause, which is never sent to the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	e := leaderboard.AsError(err)
	if e.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestID(r.Context()), "code", e.Code, "err", err)
	}

	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	respondJSON(w, e.Status, errorBody{Error: errorDetail{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}})
}

// Query parsing

func invalidParam(field, reason string) error {
	return leaderboard.ValidationError("Invalid request data", map[string]any{
		"field":  field,
		"reason": reason,
	})
}

// parseQuery reads limit, offset, mode and, when allowSort is set, sort.
// Values the service would silently replace are rejected here.
func parseQuery(v url.Values, allowSort bool) (leaderboard.Query, error) {
	q := leaderboard.Query{Limit: leaderboard.DefaultLimit}

	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > leaderboard.MaxLimit {
			return q, invalidParam("limit", "must be an integer between 1 and 100")
		}
		q.Limit = n
	}
	if raw := v.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, invalidParam("offset", "must be a non-negative integer")
		}
		q.Offset = n
	}
	if raw := v.Get("mode"); raw != "" {
		if leaderboard.ValidateMode(raw) != nil {
			return q, invalidParam("mode", "must be walls or walls-through")
		}
		q.Mode = raw
	}
	if allowSort {
		switch raw := v.Get("sort"); raw {
		case "", "score", "date":
			q.Sort = raw
		default:
			return q, invalidParam("sort", "must be score or date")
		}
	}
	return q, nil
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

func (s *Server) handleDBHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.logger.Error("database health check failed", "request_id", RequestID(r.Context()), "err", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":       "unhealthy",
			"db_connected": false,
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"db_connected": true,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query(), true)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.svc.Leaderboard(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newPageBody(page))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub leaderboard.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		reason := "body must be a JSON object with username, score and mode"
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			reason = "body is too large"
		}
		s.respondError(w, r, invalidParam("body", reason))
		return
	}

	entry, err := s.svc.Submit(r.Context(), sub)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (s *Server) handleUserScores(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	q, err := parseQuery(r.URL.Query(), false)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.svc.UserScores(r.Context(), username, q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newPageBody(page))
}
