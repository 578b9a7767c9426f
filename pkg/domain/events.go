package domain

import (
	"context"
	"time"
)

// TurnEvent describes the start or end of a turn.
type TurnEvent struct {
	TurnID    string
	UserID    string
	EventType EventType
	Status    OutcomeStatus // Only set on turn end
	Duration  time.Duration // Only set on turn end
}

// TransitionEvent describes a step change produced by the dialogue machine
// or by the orchestrator unwinding a failed side effect.
type TransitionEvent struct {
	TurnID string
	UserID string
	From   Step
	To     Step
	Diff   *SessionDiff
}

// EffectStage names a stage of the generation side effect.
type EffectStage string

const (
	StageGenerate EffectStage = "generate"
	StageRecord   EffectStage = "record"
	StageReply    EffectStage = "reply"
	StageRevert   EffectStage = "revert"
)

// EffectEvent describes the completion of one side-effect stage.
type EffectEvent struct {
	TurnID   string
	UserID   string
	Stage    EffectStage
	Theme    Theme
	Duration time.Duration
	Err      error
}

// LifecycleHooks defines callbacks for turn observability.
// All hooks are optional.
type LifecycleHooks struct {
	OnTurnStart  func(context.Context, *TurnEvent)
	OnTurnEnd    func(context.Context, *TurnEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnEffect     func(context.Context, *EffectEvent)
}
