package llm

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"insight_server/core/cache"
	"insight_server/core/port/out"
)

const toneSystemPrompt = "You are an email tone analysis assistant. " +
	"Identify the overall tone of the email in a short phrase " +
	"(for example: formal, urgent, friendly, frustrated, promotional, neutral)." +
	"Return in 2-3 words."

// ToneUnavailable is the placeholder used when tone analysis was
// skipped or timed out.
const ToneUnavailable = "unavailable"

// Toner classifies text into a short tone label. Always single-shot:
// its input is a summary, not a full email, so no map-reduce applies.
// Caching, truncation and fallback discipline match the summarizer.
type Toner struct {
	llm   out.CompletionPort
	cache *cache.Store
	log   zerolog.Logger
}

// NewToner creates a tone engine with its own cache.
func NewToner(llm out.CompletionPort, store *cache.Store, log zerolog.Logger) *Toner {
	return &Toner{
		llm:   llm,
		cache: store,
		log:   log.With().Str("component", "toner").Logger(),
	}
}

// Cache exposes the engine's cache for stats and reset endpoints.
func (t *Toner) Cache() *cache.Store {
	return t.cache
}

// Classify returns a 2-3 word tone label for text. Empty input yields
// an empty label with no upstream call; upstream failure degrades into
// a fallback string.
func (t *Toner) Classify(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	label, err := t.cache.GetOrCompute(cache.Key(text), func() (string, error) {
		user := "Analyze the tone of the following email. Limit answers to 2-3 words\n\n" +
			"Return:\n" +
			"1) One short label for the tone (e.g., 'formal and urgent', 'friendly and casual').\n" +
			"2) Return in 2-3 words.\n\n" +
			"Email:\n" + truncateInput(text) + "\n\nTone analysis:"

		return t.llm.Complete(ctx, out.PromptRequest{
			System: toneSystemPrompt,
			User:   user,
		})
	})
	if err != nil {
		t.log.Warn().Err(err).Msg("tone analysis failed")
		return fallback("Tone", err)
	}
	return label
}
