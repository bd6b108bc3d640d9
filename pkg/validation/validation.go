package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxStatsURLLength = 2048
	MaxStreamIDLength = 512
)

// ValidateStatsURL accepts absolute http and https URLs only
func ValidateStatsURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("stats URL is required")
	}
	if len(raw) > MaxStatsURLLength {
		return fmt.Errorf("stats URL is too long (max %d characters)", MaxStatsURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid stats URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid stats URL scheme %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("stats URL must have a host")
	}
	return nil
}

// ValidateStreamID checks a publisher key as it appears in the stats
// document, for example "publish/live/feed1".
func ValidateStreamID(id string) error {
	if id == "" {
		return fmt.Errorf("stream ID is required")
	}
	if len(id) > MaxStreamIDLength {
		return fmt.Errorf("stream ID is too long (max %d characters)", MaxStreamIDLength)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("stream ID is not valid UTF-8")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("stream ID must not contain whitespace or control characters")
		}
	}
	return nil
}
