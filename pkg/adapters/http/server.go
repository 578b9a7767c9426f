package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/uranai/internal/logging"
	"github.com/aretw0/uranai/pkg/adapters/line"
	"github.com/aretw0/uranai/pkg/dispatch"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodyBytes caps the webhook payload. LINE batches are far smaller.
const DefaultMaxBodyBytes int64 = 1 << 20

const msgStoreUnavailable = "Session store is temporarily unavailable."

// Dispatcher fans a webhook batch out to per-event turns.
type Dispatcher interface {
	Dispatch(ctx context.Context, events []domain.Event) []domain.Outcome
}

// Readiness reports whether the session store can serve a batch.
type Readiness interface {
	EnsureReady(ctx context.Context) error
}

// Server serves the LINE webhook and the operational endpoints.
type Server struct {
	dispatcher    Dispatcher
	readiness     Readiness
	channelSecret string
	maxBodyBytes  int64
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithChannelSecret enables X-Line-Signature verification.
func WithChannelSecret(secret string) Option {
	return func(s *Server) {
		s.channelSecret = secret
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMetrics mounts /metrics and counts webhook responses.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server. Without a channel secret every request is accepted,
// which is only meant for local development.
func NewServer(dispatcher Dispatcher, readiness Readiness, opts ...Option) *Server {
	s := &Server{
		dispatcher:   dispatcher,
		readiness:    readiness,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler builds the router.
func NewHandler(dispatcher Dispatcher, readiness Readiness, opts ...Option) http.Handler {
	return NewServer(dispatcher, readiness, opts...).Routes()
}

// Routes returns the chi router for the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", s.Webhook)
	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// webhookResponse is the body returned to the platform after a batch.
type webhookResponse struct {
	Outcomes []domain.Outcome              `json:"outcomes"`
	Summary  map[domain.OutcomeStatus]int `json:"summary"`
}

// Webhook handles POST /webhook.
func (s *Server) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respond(w, http.StatusRequestEntityTooLarge, messageResponse("Request body too large."))
			return
		}
		s.logger.Warn("Webhook: failed to read body", "err", err)
		s.respond(w, http.StatusBadRequest, messageResponse("Invalid request body."))
		return
	}

	if s.channelSecret != "" && !line.VerifySignature(s.channelSecret, body, r.Header.Get(line.SignatureHeader)) {
		s.logger.Warn("Webhook: signature mismatch", "request_id", middleware.GetReqID(r.Context()))
		s.respond(w, http.StatusUnauthorized, messageResponse("Invalid signature."))
		return
	}

	events, err := line.DecodeWebhook(body)
	if err != nil {
		s.logger.Warn("Webhook: undecodable payload", "err", err, "size", len(body))
		s.respond(w, http.StatusBadRequest, messageResponse("Invalid webhook payload."))
		return
	}

	if err := s.readiness.EnsureReady(r.Context()); err != nil {
		s.logger.Error("Webhook: session store unavailable", "err", err, "events", len(events))
		if s.metrics != nil {
			s.metrics.StoreUnavailable.Inc()
		}
		s.respond(w, http.StatusServiceUnavailable, messageResponse(msgStoreUnavailable))
		return
	}

	start := time.Now()
	outcomes := s.dispatcher.Dispatch(r.Context(), events)
	summary := dispatch.Summary(outcomes)
	s.logger.Info("Webhook batch processed",
		"request_id", middleware.GetReqID(r.Context()),
		"events", len(events),
		"handled", summary[domain.OutcomeHandled],
		"skipped", summary[domain.OutcomeSkipped],
		"failed", summary[domain.OutcomeFailed],
		"duration_ms", time.Since(start).Milliseconds(),
	)

	s.respond(w, http.StatusOK, webhookResponse{Outcomes: outcomes, Summary: summary})
}

// Health handles GET /health. It never touches the store.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if err := s.readiness.EnsureReady(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "message": msgStoreUnavailable})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) respond(w http.ResponseWriter, code int, v any) {
	if s.metrics != nil {
		s.metrics.WebhookBatches.WithLabelValues(strconv.Itoa(code)).Inc()
	}
	writeJSON(w, code, v)
}
