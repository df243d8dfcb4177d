// Package sanitize implements the syntactic gate that every inbound message
// must clear before any other stage may see it.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pennywise-bot/pennywise/internal/model"
)

// Default policy values. The allowed punctuation set and word cap varied
// across deployments; these are the canonical choices, overridable in config.
const (
	DefaultMinLength          = 10
	DefaultMaxLength          = 300
	DefaultMaxWords           = 20
	DefaultAllowedPunctuation = ".,!?"
)

const retryHint = "Try: `Lunch 150 at Dominos`"

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Config holds the sanitizer policy knobs. AllowedPunctuation restricts
// punctuation only; letters, digits, whitespace, and currency symbols always
// pass.
type Config struct {
	AllowedPunctuation string
	MinLength          int
	MaxLength          int
	MaxWords           int
}

// Sanitizer enforces length, character-set, and structural constraints on
// raw text.
type Sanitizer struct {
	allowed map[rune]struct{}
	cfg     Config
}

// New creates a sanitizer, filling zero config fields with defaults.
func New(cfg Config) *Sanitizer {
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxLength
	}
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = DefaultMaxWords
	}
	if cfg.AllowedPunctuation == "" {
		cfg.AllowedPunctuation = DefaultAllowedPunctuation
	}

	allowed := make(map[rune]struct{}, len(cfg.AllowedPunctuation))
	for _, r := range cfg.AllowedPunctuation {
		allowed[r] = struct{}{}
	}

	return &Sanitizer{cfg: cfg, allowed: allowed}
}

// Sanitize checks raw text against the policy. On success the returned
// result carries the trimmed text; on rejection it carries a user-facing
// advisory and the sanitization error code.
func (s *Sanitizer) Sanitize(text string) model.SanitizationResult {
	trimmed := strings.TrimSpace(text)

	runes := []rune(trimmed)
	if len(runes) < s.cfg.MinLength {
		return reject(fmt.Sprintf("⁉️ Message too short. %s", retryHint))
	}
	if len(runes) > s.cfg.MaxLength {
		return reject(fmt.Sprintf("⁉️ Message too long, keep it under %d characters.", s.cfg.MaxLength))
	}

	if htmlTagPattern.MatchString(trimmed) {
		return reject("⁉️ Plain text only, please.")
	}

	var hasLetter, hasDigit bool
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsSpace(r):
		// Currency symbols (₹, $, €, ...) are always allowed regardless of
		// the punctuation policy; the signal detector depends on them.
		case unicode.Is(unicode.Sc, r):
		default:
			if _, ok := s.allowed[r]; !ok {
				return reject(fmt.Sprintf("⁉️ Unsupported characters in message. %s", retryHint))
			}
		}
	}
	if !hasLetter && !hasDigit {
		return reject(fmt.Sprintf("⁉️ That doesn't look like an expense. %s", retryHint))
	}

	if len(strings.Fields(trimmed)) > s.cfg.MaxWords {
		return reject(fmt.Sprintf("⁉️ Too many words, keep it under %d.", s.cfg.MaxWords))
	}

	return model.SanitizationResult{
		IsValid:       true,
		SanitizedText: trimmed,
	}
}

func reject(userMessage string) model.SanitizationResult {
	return model.SanitizationResult{
		UserMessage: userMessage,
		ErrorCode:   model.CodeSanitization,
	}
}
