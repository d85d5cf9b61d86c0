package security

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxPromptLength is used when the validator is built with a zero limit.
const MaxPromptLength = 2000

// promptPatterns reject questions that try to steer the model away from a
// read-only attendance query.
var promptPatterns = []*regexp.Regexp{
	// Prompt injection
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(the\s+)?(previous|above|prior)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(the\s+)?(previous|above|prior)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(the\s+)?(previous|above|prior)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?(the\s+)?(previous|above|prior)\s+(instructions|rules)`),
	regexp.MustCompile(`(?i)new\s+(context|instructions)\s*:`),
	regexp.MustCompile(`(?i)\bsystem\s+prompt\b`),
	regexp.MustCompile(`(?i)\byou\s+are\s+now\b`),

	// Write intent
	regexp.MustCompile(`(?i)\b(drop|truncate|alter)\s+(table|database|schema|view|index)\b`),
	regexp.MustCompile(`(?i)\bdelete\s+from\b`),
	regexp.MustCompile(`(?i)\binsert\s+into\b`),
	regexp.MustCompile(`(?i)\bupdate\s+\w+\s+set\b`),
	regexp.MustCompile(`(?i)\bexec(ute)?\s+(xp_|sp_)`),
	regexp.MustCompile(`(?i)\bgrant\s+\w+\s+on\b`),

	// Raw SQL smuggling
	regexp.MustCompile(`;\s*--`),
	regexp.MustCompile(`/\*.*?\*/`),
}

// PromptValidator validates prompts for injection and dangerous content
type PromptValidator struct {
	maxLength int
}

func NewPromptValidator(maxLength int) *PromptValidator {
	if maxLength <= 0 {
		maxLength = MaxPromptLength
	}
	return &PromptValidator{maxLength: maxLength}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks a prompt for dangerous patterns
func (v *PromptValidator) Validate(prompt string) ValidationResult {
	if strings.TrimSpace(prompt) == "" {
		return ValidationResult{Valid: false, Message: "prompt cannot be empty"}
	}

	if len(prompt) > v.maxLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("prompt too long: %d chars (max %d)", len(prompt), v.maxLength),
		}
	}

	for _, pattern := range promptPatterns {
		if pattern.MatchString(prompt) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("disallowed pattern detected: %s", pattern.String()),
			}
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}
