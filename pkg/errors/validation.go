package errors

import (
	"strings"
	"unicode"
)

// MaxUsernameLength bounds accepted usernames. Last.fm itself caps them at 15
// characters; the margin leaves room for other sources.
const MaxUsernameLength = 64

// ValidPeriods are the listening windows understood by the chart sources.
var ValidPeriods = map[string]bool{
	"overall": true,
	"7day":    true,
	"1month":  true,
	"3month":  true,
	"6month":  true,
	"12month": true,
}

// ValidateUsername validates a user name before it is sent upstream.
// Surrounding whitespace is ignored.
//
// Validation rules:
//   - Username cannot be empty
//   - Maximum length of MaxUsernameLength characters
//   - No control characters
//   - No URL or path metacharacters (/ \ ? # & %)
func ValidateUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeInvalidUsername, "username cannot be empty")
	}

	if len(name) > MaxUsernameLength {
		return New(ErrCodeInvalidUsername, "username too long (max %d characters)", MaxUsernameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidUsername, "username contains invalid control characters")
		}
	}

	if i := strings.IndexAny(name, `/\?#&%`); i >= 0 {
		return New(ErrCodeInvalidUsername, "username contains invalid character %q", name[i])
	}

	return nil
}

// ValidatePeriod checks that period is one of [ValidPeriods].
func ValidatePeriod(period string) error {
	if !ValidPeriods[period] {
		return New(ErrCodeInvalidPeriod, "invalid period: %s (must be overall, 7day, 1month, 3month, 6month or 12month)", period)
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
