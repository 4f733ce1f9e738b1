package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"insight_server/core/cache"
	"insight_server/core/port/out"
)

const (
	// reduceInputChars bounds the joined chunk summaries fed into the
	// reduce call; finalSummaryChars bounds the returned summary.
	reduceInputChars  = 3000
	finalSummaryChars = 800

	// UnavailableAllChunks is returned when every chunk of the map
	// phase failed.
	UnavailableAllChunks = "Summary unavailable (all chunks failed)"

	defaultMapConcurrency = 5
)

const summarySystemPrompt = "You are an email assistant. Summarize the email in clear bullet points, " +
	"focusing on key information, deadlines, tasks, sender intent, and urgency. " +
	"Limit answer to 50 words. Do not return anything other than the summary, " +
	"especially not something like ('Here is the summary.....')"

// Summarizer produces a bounded-length bullet summary of an email body
// via map-reduce over its chunks. Results are cached by content hash;
// one upstream call happens per distinct text.
type Summarizer struct {
	llm         out.CompletionPort
	cache       *cache.Store
	concurrency int
	log         zerolog.Logger
}

// NewSummarizer creates a summarization engine with its own cache.
func NewSummarizer(llm out.CompletionPort, store *cache.Store, log zerolog.Logger) *Summarizer {
	return &Summarizer{
		llm:         llm,
		cache:       store,
		concurrency: defaultMapConcurrency,
		log:         log.With().Str("component", "summarizer").Logger(),
	}
}

// Cache exposes the engine's cache for stats and reset endpoints.
func (s *Summarizer) Cache() *cache.Store {
	return s.cache
}

// WithConcurrency overrides the map-stage fan-out width.
func (s *Summarizer) WithConcurrency(n int) *Summarizer {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Summarize turns ordered chunks into one final summary. Individual
// chunk failures during the map phase are tolerated; survivors are
// reduced. It never returns an error: upstream failures degrade into a
// clearly marked fallback string.
func (s *Summarizer) Summarize(ctx context.Context, chunks []string) string {
	switch len(chunks) {
	case 0:
		return ""
	case 1:
		summary, err := s.summarizeText(ctx, chunks[0])
		if err != nil {
			return fallback("Summary", err)
		}
		return summary
	}

	s.log.Debug().Int("chunks", len(chunks)).Msg("map-reduce summarization")

	// Map phase: all chunks concurrently, order preserved, failures
	// contribute nothing.
	partials := s.mapChunks(ctx, chunks)

	valid := partials[:0]
	for _, p := range partials {
		if p != "" {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return UnavailableAllChunks
	}

	// Reduce phase: one further call over the joined partial summaries.
	combined := joinBounded(valid, reduceInputChars)
	final, err := s.summarizeText(ctx, "Summarize these email summaries briefly:\n\n"+combined)
	if err != nil {
		return fallback("Summary", err)
	}
	if len(final) > finalSummaryChars {
		final = final[:finalSummaryChars]
	}
	return final
}

// mapChunks fans the chunk summarization calls out with bounded
// concurrency and collects results in input order. A failed chunk
// yields an empty slot.
func (s *Summarizer) mapChunks(ctx context.Context, chunks []string) []string {
	type result struct {
		index   int
		summary string
	}

	concurrency := s.concurrency
	if concurrency <= 0 {
		concurrency = defaultMapConcurrency
	}

	results := make(chan result, len(chunks))
	semaphore := make(chan struct{}, concurrency)

	for i, chunk := range chunks {
		go func(idx int, text string) {
			semaphore <- struct{}{}        // acquire
			defer func() { <-semaphore }() // release
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Int("chunk", idx).Msg("chunk summarization panicked")
					results <- result{index: idx}
				}
			}()

			summary, err := s.summarizeText(ctx, text)
			if err != nil {
				s.log.Warn().Err(err).Int("chunk", idx).Msg("chunk summarization failed")
				summary = ""
			}
			results <- result{index: idx, summary: summary}
		}(i, chunk)
	}

	ordered := make([]string, len(chunks))
	for range chunks {
		r := <-results
		ordered[r.index] = r.summary
	}
	return ordered
}

// summarizeText is the single cached summarization call. The cache key
// is the untruncated text; truncation applies only to what is sent
// upstream.
func (s *Summarizer) summarizeText(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	return s.cache.GetOrCompute(cache.Key(text), func() (string, error) {
		user := "Summarize the following email in clear and concise bullet points. " +
			"Do not return anything other than the summary, especially not something like ('Here is the summary.....')\n\n" +
			"Email:\n" + truncateInput(text) + "\n\nSummary:"

		return s.llm.Complete(ctx, out.PromptRequest{
			System: summarySystemPrompt,
			User:   user,
		})
	})
}

// joinBounded joins parts with single spaces and caps the result.
func joinBounded(parts []string, max int) string {
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += " "
		}
		joined += p
		if len(joined) >= max {
			break
		}
	}
	if len(joined) > max {
		joined = joined[:max]
	}
	return joined
}

// fallback formats the user-visible placeholder for a failed task.
func fallback(task string, err error) string {
	return fmt.Sprintf("%s unavailable (%v)", task, err)
}
