package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/uranai/internal/logging"
	"github.com/aretw0/uranai/pkg/dialogue"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/ports"
	"github.com/aretw0/uranai/pkg/session"
	"github.com/google/uuid"
)

const (
	DefaultGenerationTimeout = 25 * time.Second
	DefaultReplyWindow       = 55 * time.Second

	persistTimeout = 5 * time.Second
)

// Orchestrator executes turns. It is safe for concurrent use.
type Orchestrator struct {
	sessions  *session.Manager
	generator ports.Generator
	ledger    ports.Ledger
	replier   ports.Replier

	logger            *slog.Logger
	hooks             domain.LifecycleHooks
	generationTimeout time.Duration
	replyWindow       time.Duration
	now               func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithGenerationTimeout bounds a single generation call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.generationTimeout = d
	}
}

// WithReplyWindow sets how long after an event is received its reply token is considered valid.
func WithReplyWindow(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.replyWindow = d
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator.
func New(sessions *session.Manager, generator ports.Generator, ledger ports.Ledger, replier ports.Replier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions:          sessions,
		generator:         generator,
		ledger:            ledger,
		replier:           replier,
		logger:            logging.NewNop(),
		generationTimeout: DefaultGenerationTimeout,
		replyWindow:       DefaultReplyWindow,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// turnScope carries per-turn values.
type turnScope struct {
	id     string
	event  domain.Event
	logger *slog.Logger
	reply  *replyHandle
}

// Handle runs one event end to end. It never panics and never returns before the
// resulting session has been persisted (or the save has failed and been logged).
func (o *Orchestrator) Handle(ctx context.Context, ev domain.Event) (out domain.Outcome) {
	t := &turnScope{
		id:    uuid.NewString(),
		event: ev,
	}
	t.logger = o.logger.With(
		"turn_id", t.id,
		"user_id", ev.UserID,
		"event_type", string(ev.Type),
	)

	received := ev.ReceivedAt
	if received.IsZero() {
		received = o.now()
	}
	t.reply = newReplyHandle(o.replier, ev.ReplyToken, received.Add(o.replyWindow), o.now)

	start := o.now()
	out = domain.Outcome{EventID: ev.ID, UserID: ev.UserID, Status: domain.OutcomeHandled}
	o.turnStart(ctx, t)
	defer func() {
		o.turnEnd(ctx, t, out.Status, o.now().Sub(start))
	}()

	if ev.UserID == "" || !ev.Type.Supported() {
		out.Status = domain.OutcomeSkipped
		return out
	}
	if ev.Redelivery {
		t.logger.Info("Handling redelivered event", "event_id", ev.ID)
	}

	err := o.sessions.WithLock(ctx, ev.UserID, func(ctx context.Context) error {
		if ev.Departure() {
			return o.depart(ctx, t)
		}
		return o.run(ctx, t, &out)
	})
	if err != nil {
		out.Status = domain.OutcomeFailed
		out.Err = err
	}
	return out
}

func (o *Orchestrator) depart(ctx context.Context, t *turnScope) error {
	if err := o.sessions.Delete(ctx, t.event.UserID); err != nil {
		t.logger.Error("Failed to delete session", "err", err)
		return err
	}
	t.logger.Info("User left, session deleted")
	return nil
}

// run is the turn body. The deferred block recovers panics and persists the session.
func (o *Orchestrator) run(ctx context.Context, t *turnScope, out *domain.Outcome) (err error) {
	current, fresh := o.sessions.Load(ctx, t.event.UserID)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Turn panicked", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("turn panicked: %v", r)
			if current.Step == domain.StepGenerating {
				o.notify(ctx, t, dialogue.FailureMessages())
			} else {
				o.notify(ctx, t, dialogue.InternalErrorMessages())
			}
		}

		// Generating only lives inside a turn.
		if current.Step == domain.StepGenerating {
			current = o.revert(ctx, t, current, err)
		}

		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if saveErr := o.sessions.Save(persistCtx, current); saveErr != nil {
			t.logger.Error("Failed to persist session", "step", current.Step, "err", saveErr)
			err = errors.Join(err, saveErr)
		}
		out.Step = current.Step
	}()

	input := t.event.Input
	if t.event.Type == domain.EventFollow {
		// (Re)adding the bot starts the dialogue over.
		current = current.Reset()
		input = domain.TextInput{}
	}

	t.logger.Debug("Turn loaded session", "step", current.Step, "fresh", fresh)

	res := dialogue.Transition(current, input)
	o.transition(ctx, t, current, res.Session)
	if res.Reset {
		t.logger.Warn("Session reset after protocol violation", "from_step", current.Step)
	}
	current = res.Session

	if res.Effect == nil {
		o.notify(ctx, t, res.Messages)
		return nil
	}

	if effErr := o.runEffect(ctx, t, *res.Effect); effErr != nil {
		t.logger.Error("Fortune request failed", "theme", string(res.Effect.Theme), "err", effErr)
		current = o.revert(ctx, t, current, effErr)
		o.notify(ctx, t, dialogue.FailureMessages())
		return effErr
	}

	done := current.Reset()
	o.transition(ctx, t, current, done)
	current = done
	t.logger.Info("Fortune request completed, session reset")
	return nil
}

// runEffect performs generate, record and reply in order and stops at the first failure.
func (o *Orchestrator) runEffect(ctx context.Context, t *turnScope, eff domain.RunGeneration) error {
	budget := o.generationTimeout
	if remaining := t.reply.Remaining(); remaining < budget {
		budget = remaining
	}
	if budget <= 0 {
		return fmt.Errorf("skipping generation: %w", domain.ErrReplyUnavailable)
	}

	start := o.now()
	genCtx, cancel := context.WithTimeout(ctx, budget)
	report, err := o.generator.Generate(genCtx, eff.Name, eff.Birth, eff.Theme)
	cancel()
	o.effect(ctx, t, domain.StageGenerate, eff.Theme, o.now().Sub(start), err)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	if !t.reply.Usable() {
		return fmt.Errorf("generation outlived the reply window: %w", domain.ErrReplyUnavailable)
	}

	start = o.now()
	err = o.ledger.Append(ctx, domain.LedgerEntry{
		UserID:    t.event.UserID,
		Name:      eff.Name,
		Birth:     eff.Birth,
		Theme:     string(eff.Theme),
		Report:    report,
		CreatedAt: o.now().UTC(),
	})
	o.effect(ctx, t, domain.StageRecord, eff.Theme, o.now().Sub(start), err)
	if err != nil {
		return fmt.Errorf("ledger append failed: %w", err)
	}

	start = o.now()
	err = t.reply.Send(ctx, dialogue.ConfirmationMessages(eff.Name, eff.Theme))
	o.effect(ctx, t, domain.StageReply, eff.Theme, o.now().Sub(start), err)
	if err != nil {
		return fmt.Errorf("confirmation reply failed: %w", err)
	}
	return nil
}

func (o *Orchestrator) revert(ctx context.Context, t *turnScope, s domain.Session, cause error) domain.Session {
	reverted := unwind(s)
	o.transition(ctx, t, s, reverted)
	o.effect(ctx, t, domain.StageRevert, domain.Theme(s.Theme), 0, cause)
	return reverted
}

// notify sends through the reply handle; failures are logged only.
func (o *Orchestrator) notify(ctx context.Context, t *turnScope, msgs []domain.Message) {
	if len(msgs) == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Reply panicked", "panic", r)
		}
	}()
	if err := t.reply.Send(ctx, msgs); err != nil {
		if errors.Is(err, domain.ErrReplyUnavailable) {
			t.logger.Warn("Reply not sent", "err", err)
			return
		}
		t.logger.Error("Reply delivery failed", "err", err)
	}
}

func (o *Orchestrator) turnStart(ctx context.Context, t *turnScope) {
	if o.hooks.OnTurnStart != nil {
		o.hooks.OnTurnStart(ctx, &domain.TurnEvent{
			TurnID:    t.id,
			UserID:    t.event.UserID,
			EventType: t.event.Type,
		})
	}
}

func (o *Orchestrator) turnEnd(ctx context.Context, t *turnScope, status domain.OutcomeStatus, d time.Duration) {
	if o.hooks.OnTurnEnd != nil {
		o.hooks.OnTurnEnd(ctx, &domain.TurnEvent{
			TurnID:    t.id,
			UserID:    t.event.UserID,
			EventType: t.event.Type,
			Status:    status,
			Duration:  d,
		})
	}
}

func (o *Orchestrator) transition(ctx context.Context, t *turnScope, from, to domain.Session) {
	diff := domain.Diff(from, to)
	if diff == nil {
		return
	}
	t.logger.Debug("Session transition", "from_step", from.Step, "to_step", to.Step, "fields", diff.Fields)
	if o.hooks.OnTransition != nil {
		o.hooks.OnTransition(ctx, &domain.TransitionEvent{
			TurnID: t.id,
			UserID: t.event.UserID,
			From:   from.Step,
			To:     to.Step,
			Diff:   diff,
		})
	}
}

func (o *Orchestrator) effect(ctx context.Context, t *turnScope, stage domain.EffectStage, theme domain.Theme, d time.Duration, err error) {
	if o.hooks.OnEffect != nil {
		o.hooks.OnEffect(ctx, &domain.EffectEvent{
			TurnID:   t.id,
			UserID:   t.event.UserID,
			Stage:    stage,
			Theme:    theme,
			Duration: d,
			Err:      err,
		})
	}
}
