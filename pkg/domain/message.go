package domain

// Message is an outbound reply payload.
// Only two shapes are ever produced: plain text and a theme selection prompt.
type Message interface {
	isMessage()
}

// TextMessage is a plain text reply.
type TextMessage struct {
	Text string
}

// ThemePrompt is a text reply carrying one selectable option per theme.
type ThemePrompt struct {
	Text   string
	Themes []Theme
}

func (TextMessage) isMessage() {}
func (ThemePrompt) isMessage() {}
