package uranai

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/uranai/internal/config"
	"github.com/aretw0/uranai/internal/logging"
	"github.com/aretw0/uranai/pkg/adapters/genai"
	httpadapter "github.com/aretw0/uranai/pkg/adapters/http"
	"github.com/aretw0/uranai/pkg/adapters/ledger"
	"github.com/aretw0/uranai/pkg/adapters/line"
	"github.com/aretw0/uranai/pkg/adapters/memory"
	"github.com/aretw0/uranai/pkg/adapters/redis"
	"github.com/aretw0/uranai/pkg/dispatch"
	"github.com/aretw0/uranai/pkg/observability"
	"github.com/aretw0/uranai/pkg/persistence/middleware"
	"github.com/aretw0/uranai/pkg/ports"
	"github.com/aretw0/uranai/pkg/session"
	"github.com/aretw0/uranai/pkg/turn"
)

const replyHTTPTimeout = 10 * time.Second

// App is a fully wired bot: session store, collaborators, turn pipeline and HTTP handler.
type App struct {
	Sessions     *session.Manager
	Orchestrator *turn.Orchestrator
	Dispatcher   *dispatch.Dispatcher
	Metrics      *observability.Metrics
	Handler      http.Handler

	logger  *slog.Logger
	closers []func() error
}

// Option overrides a collaborator or ambient dependency of the App.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	store     ports.SessionStore
	generator ports.Generator
	ledger    ports.Ledger
	replier   ports.Replier
}

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore injects a session store, bypassing KV_URL.
func WithStore(store ports.SessionStore) Option {
	return func(o *options) { o.store = store }
}

// WithGenerator injects a report generator instead of the OpenAI client.
func WithGenerator(g ports.Generator) Option {
	return func(o *options) { o.generator = g }
}

// WithLedger injects a ledger instead of opening LEDGER_DSN.
func WithLedger(l ports.Ledger) Option {
	return func(o *options) { o.ledger = l }
}

// WithReplier injects a replier instead of the LINE Messaging API client.
func WithReplier(r ports.Replier) Option {
	return func(o *options) { o.replier = r }
}

// New wires an App from cfg. Call Close when done.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{logger: o.logger}

	sessions, closeStore, err := openSessions(cfg, o.store, o.logger)
	if err != nil {
		return nil, err
	}
	app.Sessions = sessions
	app.closers = append(app.closers, closeStore)

	generator := o.generator
	if generator == nil {
		generator, err = genai.New(
			genai.WithAPIKey(cfg.Generation.APIKey),
			genai.WithBaseURL(cfg.Generation.BaseURL),
			genai.WithModel(cfg.Generation.Model),
			genai.WithMaxTokens(cfg.Generation.MaxTokens),
			genai.WithTemperature(cfg.Generation.Temperature),
			genai.WithLogger(o.logger),
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("generation client: %w", err)
		}
	}

	sink := o.ledger
	if sink == nil {
		opened, err := ledger.Open(cfg.Ledger.DSN)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("ledger: %w", err)
		}
		app.closers = append(app.closers, opened.Close)
		sink = opened
	}

	replier := o.replier
	if replier == nil {
		client, err := line.NewClient(line.Config{
			BaseURL:     cfg.LINE.APIBaseURL,
			AccessToken: cfg.LINE.ChannelAccessToken,
			Timeout:     replyHTTPTimeout,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("reply client: %w", err)
		}
		replier = client
	}

	app.Metrics = observability.NewMetrics()
	app.Orchestrator = turn.New(sessions, generator, sink, replier,
		turn.WithLogger(o.logger),
		turn.WithHooks(observability.Chain(app.Metrics.Hooks(), observability.LogHooks(o.logger))),
		turn.WithGenerationTimeout(cfg.Generation.Timeout),
		turn.WithReplyWindow(cfg.LINE.ReplyWindow),
	)
	app.Dispatcher = dispatch.New(app.Orchestrator, dispatch.WithLogger(o.logger))

	if cfg.LINE.ChannelSecret == "" {
		o.logger.Warn("CHANNEL_SECRET not set; webhook signatures are not verified")
	}
	app.Handler = httpadapter.NewHandler(app.Dispatcher, sessions,
		httpadapter.WithChannelSecret(cfg.LINE.ChannelSecret),
		httpadapter.WithMaxBodyBytes(cfg.LINE.MaxBodyBytes),
		httpadapter.WithMetrics(app.Metrics),
		httpadapter.WithLogger(o.logger),
	)
	return app, nil
}

// Close releases the store connection and the ledger.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenSessions builds only the session layer, for operator commands that
// must not require channel or API credentials.
func OpenSessions(cfg *config.Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	return openSessions(cfg, nil, logger)
}

func openSessions(cfg *config.Config, store ports.SessionStore, logger *slog.Logger) (*session.Manager, func() error, error) {
	closeStore := func() error { return nil }
	var sessionOpts []session.Option

	switch {
	case store != nil:
	case cfg.Session.KVURL == "":
		logger.Warn("KV_URL not set; sessions live in memory and will not survive a restart")
		store = memory.NewStore(memory.WithTTL(cfg.Session.TTL))
	default:
		rs, err := redis.New(cfg.Session.KVURL,
			redis.WithTTL(cfg.Session.TTL),
			redis.WithNamespace(cfg.Session.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		store = rs
		closeStore = rs.Close
		if cfg.Session.SerializeTurn {
			sessionOpts = append(sessionOpts, session.WithLocker(redis.NewLocker(rs.Client(), cfg.Session.Prefix+":")))
		}
	}

	if cfg.Session.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Session.EncryptionKey)
		if err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("SESSION_ENCRYPTION_KEY: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		store = middleware.Chain(store, enc)
	}

	sessionOpts = append(sessionOpts,
		session.WithSerialization(cfg.Session.SerializeTurn),
		session.WithLogger(logger),
	)
	return session.NewManager(store, sessionOpts...), closeStore, nil
}
