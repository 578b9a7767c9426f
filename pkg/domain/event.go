package domain

import "time"

// EventType is the platform event category.
type EventType string

const (
	EventMessage  EventType = "message"
	EventPostback EventType = "postback"
	EventFollow   EventType = "follow"
	EventUnfollow EventType = "unfollow"
	EventLeave    EventType = "leave"
)

// Event is a single transport-neutral inbound event.
type Event struct {
	ID         string // Webhook event ID, used for log correlation
	Type       EventType
	UserID     string
	ReplyToken string
	ReceivedAt time.Time
	Redelivery bool
	Input      Input // nil for follow/unfollow/leave
}

// Supported reports whether the bot acts on this event type.
// Other platform events (join, beacon, ...) are acknowledged and ignored.
func (t EventType) Supported() bool {
	switch t {
	case EventMessage, EventPostback, EventFollow, EventUnfollow, EventLeave:
		return true
	}
	return false
}

// Departure reports whether the event means the user left the bot.
func (e Event) Departure() bool {
	return e.Type == EventUnfollow || e.Type == EventLeave
}

// OutcomeStatus summarizes how a turn ended.
type OutcomeStatus string

const (
	OutcomeHandled OutcomeStatus = "handled"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the per-event result aggregated into the batch response.
type Outcome struct {
	EventID string        `json:"event_id,omitempty"`
	UserID  string        `json:"user_id,omitempty"`
	Status  OutcomeStatus `json:"status"`
	Step    Step          `json:"step"`
	Err     error         `json:"-"`
}
