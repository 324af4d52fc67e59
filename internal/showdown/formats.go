package showdown

import (
	"errors"
	"fmt"
	"regexp"
)

// Format tokens are lowercase alphanumeric identifiers like "gen3ou"
// or "gen9randombattle".
var formatToken = regexp.MustCompile(`^[a-z0-9]+$`)

var (
	// ErrBadFormat means the format string cannot be a valid token,
	// detected before any request is made.
	ErrBadFormat = errors.New("format must be a non-empty lowercase alphanumeric token")

	// ErrUnknownFormat means the replay index rejected the format.
	ErrUnknownFormat = errors.New("format not known to the replay index")
)

// ValidateFormatToken checks that a format string is syntactically
// plausible. The index itself has the final say; a token that passes
// here can still come back as ErrUnknownFormat.
func ValidateFormatToken(format string) error {
	if !formatToken.MatchString(format) {
		return fmt.Errorf("%q: %w", format, ErrBadFormat)
	}
	return nil
}
