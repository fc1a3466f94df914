package stepper

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxCommandSize bounds a single line read by the Runner.
var MaxCommandSize = 4096

var (
	ErrCommandTooLarge = errors.New("command exceeds maximum allowed size")
	ErrInvalidUTF8     = errors.New("command contains invalid UTF-8 sequences")
)

// SanitizeCommand trims a command line and drops control characters such as
// ANSI escapes. Oversized or malformed lines are rejected, never truncated.
func SanitizeCommand(line string) (string, error) {
	if len(line) > MaxCommandSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrCommandTooLarge, len(line), MaxCommandSize)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}
	line = strings.TrimSpace(line)
	if strings.IndexFunc(line, unicode.IsControl) < 0 {
		return line, nil
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, line), nil
}
