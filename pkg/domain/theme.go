package domain

import "fmt"

// Theme is one of the fixed fortune topics a user can pick.
type Theme string

const (
	ThemeLove    Theme = "恋愛運"
	ThemeWork    Theme = "仕事運"
	ThemeHealth  Theme = "健康運"
	ThemeMoney   Theme = "金運"
	ThemeGeneral Theme = "総合運"
)

var themes = []Theme{ThemeLove, ThemeWork, ThemeHealth, ThemeMoney, ThemeGeneral}

// Themes returns the selectable themes in display order.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// ParseTheme validates a label against the fixed theme set.
func ParseTheme(label string) (Theme, error) {
	for _, t := range themes {
		if string(t) == label {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, label)
}
