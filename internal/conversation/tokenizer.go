package conversation

import (
	"log/slog"
	"unicode/utf8"
)

// Tokenizer counts tokens for context accounting. Counts must be stable for
// identical input and configuration; the window's limits depend on it.
type Tokenizer interface {
	Count(text string) int
}

const defaultEncoding = "cl100k_base"

var modelEncodings = map[string]string{
	"gpt-4o":        "o200k_base",
	"gpt-4o-mini":   "o200k_base",
	"gpt-4":         "cl100k_base",
	"gpt-4-turbo":   "cl100k_base",
	"gpt-3.5-turbo": "cl100k_base",
}

// EncodingForModel returns the tokenizer for a model identifier, falling back
// to the default encoding when the model is unrecognized.
func EncodingForModel(model string) Tokenizer {
	encoding, ok := modelEncodings[model]
	if !ok {
		slog.Warn("unknown model for token encoding, using default", "model", model, "encoding", defaultEncoding)
		encoding = defaultEncoding
	}

	return &estimator{encoding: encoding}
}

// estimator approximates token counts at roughly four characters per token,
// which tracks the chat encodings closely enough for window accounting
// without an inference round-trip.
type estimator struct {
	encoding string
}

func (e *estimator) Count(text string) int {
	if text == "" {
		return 0
	}

	runes := utf8.RuneCountInString(text)
	count := runes / 4
	if runes%4 != 0 {
		count++
	}

	return count
}
