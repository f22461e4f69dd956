package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// gridNameRegex matches names usable as store keys and file names.
var gridNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateGridName validates the name of a grid document.
// Grid names end up in store keys and, for the file backend, in file paths,
// so the rules are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters or path separators
//   - No path traversal sequences (..)
func ValidateGridName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "grid name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "grid name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "grid name contains invalid control characters")
		}
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "grid name cannot contain path traversal sequences (..)")
	}

	if !gridNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid grid name: %q", name)
	}

	return nil
}
