package middleware

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ErrInvalidInput marks request input that fails validation. Handlers map it
// to a 400 response.
var ErrInvalidInput = errors.New("invalid input")

const maxMessageLength = 4000

var sessionKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateTargetURL validates a scan target. A missing scheme is allowed
// (the orchestrator defaults it to https); localhost and private ranges are
// rejected to keep the crawler off internal networks.
func ValidateTargetURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidInput)
	}

	candidate := rawURL
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return fmt.Errorf("%w: invalid url format", ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: invalid url scheme %s (allowed: http, https)", ErrInvalidInput, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: url has no host", ErrInvalidInput)
	}

	// Check for localhost/internal IPs (SSRF protection)
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}
	for _, b := range blocked {
		if strings.Contains(host, b) {
			return fmt.Errorf("%w: localhost/internal addresses are not allowed", ErrInvalidInput)
		}
	}

	// Block private IP ranges (basic check)
	if strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "172.16.") ||
		strings.HasPrefix(host, "172.31.") {
		return fmt.Errorf("%w: private IP ranges are not allowed", ErrInvalidInput)
	}

	return nil
}

// ValidateSessionKey validates caller-chosen session identifiers.
func ValidateSessionKey(key string) error {
	if !sessionKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: invalid session key (alphanumeric, dash, underscore, max 64 chars)", ErrInvalidInput)
	}
	return nil
}

// ValidateChatMessage validates a chat message body.
func ValidateChatMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len(msg) > maxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, maxMessageLength)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
