package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/uranai/pkg/domain"
)

// LogHooks writes one structured record per lifecycle event.
// Only field names are logged, never the captured values.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "turn_end",
				"turn_id", e.TurnID,
				"user_id", e.UserID,
				"event_type", string(e.EventType),
				"status", string(e.Status),
				"duration_ms", e.Duration.Milliseconds(),
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			var fields []string
			if e.Diff != nil {
				fields = e.Diff.Fields
			}
			logger.DebugContext(ctx, "step_transition",
				"turn_id", e.TurnID,
				"user_id", e.UserID,
				"from", e.From.String(),
				"to", e.To.String(),
				"fields", fields,
			)
		},
		OnEffect: func(ctx context.Context, e *domain.EffectEvent) {
			level := slog.LevelInfo
			if e.Err != nil {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "effect_stage",
				"turn_id", e.TurnID,
				"user_id", e.UserID,
				"stage", string(e.Stage),
				"theme", string(e.Theme),
				"duration_ms", e.Duration.Milliseconds(),
				"err", e.Err,
			)
		},
	}
}

// Chain fans each event out to every set of hooks, in order.
func Chain(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(ctx context.Context, e *domain.TurnEvent) {
			for _, h := range all {
				if h.OnTurnStart != nil {
					h.OnTurnStart(ctx, e)
				}
			}
		},
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			for _, h := range all {
				if h.OnTurnEnd != nil {
					h.OnTurnEnd(ctx, e)
				}
			}
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			for _, h := range all {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnEffect: func(ctx context.Context, e *domain.EffectEvent) {
			for _, h := range all {
				if h.OnEffect != nil {
					h.OnEffect(ctx, e)
				}
			}
		},
	}
}
