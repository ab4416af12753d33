// Package llm adapts hosted language models to the stylist strategies.
package llm

import (
	"errors"
	"strings"
)

var ErrMissingAPIKey = errors.New("api key not configured")

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
