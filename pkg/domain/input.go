package domain

// Input is what a user sent in a single inbound event.
// It is a closed union: TextInput, ThemeInput, UnsupportedInput and UnknownPostback.
type Input interface {
	isInput()
}

// TextInput is a free-text message.
type TextInput struct {
	Text string
}

// ThemeInput is a structured theme selection coming from a quick-reply postback.
type ThemeInput struct {
	Theme Theme
}

// UnsupportedInput is a message the dialogue cannot consume (sticker, image, ...).
type UnsupportedInput struct {
	Kind string
}

// UnknownPostback is a postback that is not a theme selection.
type UnknownPostback struct {
	Data string
}

func (TextInput) isInput()        {}
func (ThemeInput) isInput()       {}
func (UnsupportedInput) isInput() {}
func (UnknownPostback) isInput()  {}
