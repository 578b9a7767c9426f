package dialogue

import (
	"net/url"

	"github.com/aretw0/uranai/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ActionSelectTheme is the postback action emitted by theme quick-reply options.
const ActionSelectTheme = "select_theme"

type postbackData struct {
	Action string `mapstructure:"action"`
	Theme  string `mapstructure:"theme"`
}

// EncodeThemePostback builds the postback payload for a theme option:
// action=select_theme&theme=<url-encoded label>.
func EncodeThemePostback(t domain.Theme) string {
	return url.Values{
		"action": {ActionSelectTheme},
		"theme":  {string(t)},
	}.Encode()
}

// ParsePostback decodes postback data into a dialogue input.
// Anything that is not a valid theme selection becomes an UnknownPostback.
func ParsePostback(data string) domain.Input {
	values, err := url.ParseQuery(data)
	if err != nil {
		return domain.UnknownPostback{Data: data}
	}

	raw := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}

	var pb postbackData
	if err := mapstructure.Decode(raw, &pb); err != nil {
		return domain.UnknownPostback{Data: data}
	}
	if pb.Action != ActionSelectTheme {
		return domain.UnknownPostback{Data: data}
	}

	theme, err := domain.ParseTheme(pb.Theme)
	if err != nil {
		return domain.UnknownPostback{Data: data}
	}
	return domain.ThemeInput{Theme: theme}
}
