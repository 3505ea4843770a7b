package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateRefsetID validates a refset identifier before it is substituted
// into a refset URL template. It rejects ids that could escape the template's
// path segment.
//
// Validation rules:
//   - No empty ids
//   - Maximum length of 256 characters
//   - No control characters or null bytes
//   - No path separators, traversal sequences, query or fragment markers
func ValidateRefsetID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRefset, "refset id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidRefset, "refset id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRefset, "refset id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",
		"/",
		"\\",
		"?",
		"#",
		"\x00",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidRefset, "refset id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL parses and uses an http or https scheme with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed URL")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}

// ValidateTemplate validates a URL template that must contain placeholder
// exactly where an id will be substituted.
func ValidateTemplate(template, placeholder string) error {
	if !strings.Contains(template, placeholder) {
		return New(ErrCodeInvalidConfig, "URL template %q must contain %s", template, placeholder)
	}
	return ValidateURL(strings.ReplaceAll(template, placeholder, "x"))
}
