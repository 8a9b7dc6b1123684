package player

import (
	"strings"
	"unicode"
)

// ParseArgs splits the player.args config value into arguments for the media player.  Whitespace separates
// arguments unless quoted.  A quote only closes on the same character it opened with, so "it's" survives.
func ParseArgs(argsString string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	pending := false // An argument has started, even if it is an empty quoted string

	for _, r := range argsString {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			pending = true
		case unicode.IsSpace(r):
			if pending {
				args = append(args, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}

	if pending {
		args = append(args, current.String())
	}

	return args
}
