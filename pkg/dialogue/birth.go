package dialogue

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidBirth is returned when a birth date does not match the accepted format.
var ErrInvalidBirth = errors.New("birth date must look like YYYY-MM-DD or YYYY/M/D")

// Accepts "-" or "/" as separator and optional leading zeros.
var birthPattern = regexp.MustCompile(`^(\d{4})[-/](0?[1-9]|1[0-2])[-/](0?[1-9]|[12]\d|3[01])$`)

// NormalizeBirth validates a birth date and rewrites it to the canonical YYYY-MM-DD form.
func NormalizeBirth(input string) (string, error) {
	m := birthPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidBirth, input)
	}

	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%s-%02d-%02d", m[1], month, day), nil
}
