package dialogue

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputRunes is the LINE text message limit. Longer input cannot come from the platform.
const MaxInputRunes = 5000

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput normalizes a typed answer before the dialogue stores it.
// Control and zero-width characters are dropped, each run of whitespace becomes a
// single separator (line breaks and tabs become a space, an ideographic space is kept),
// and the result is trimmed.
func SanitizeInput(input string) (string, error) {
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if n := utf8.RuneCountInString(input); n > MaxInputRunes {
		return "", fmt.Errorf("%w: runes=%d limit=%d", ErrInputTooLarge, n, MaxInputRunes)
	}

	var b strings.Builder
	b.Grow(len(input))
	var pending rune
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			if b.Len() > 0 && pending == 0 {
				pending = separator(r)
			}
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		default:
			if pending != 0 {
				b.WriteRune(pending)
				pending = 0
			}
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func separator(r rune) rune {
	if r == '\u3000' {
		return r
	}
	return ' '
}
