// Package service drives the per-message insight pipeline: extraction,
// chunking, summarization, tone and deadline scoring under staged
// timeouts, degrading to placeholder values instead of failing.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"insight_server/core/agent/llm"
	"insight_server/core/chunk"
	"insight_server/core/deadline"
	"insight_server/core/domain"
	"insight_server/core/extract"
	"insight_server/pkg/apperr"
)

const (
	bodyTruncatedMarker = "\n\n[Email truncated due to length]"

	timeoutSummary        = "Summary unavailable (processing timeout)"
	messageTimeoutSubject = "(Processing timeout)"
	messageTimeoutSummary = "Email too large to process (timeout)"
)

// Config holds the orchestrator's budgets. Zero values fall back to the
// reference configuration.
type Config struct {
	MessageTimeout   time.Duration
	SummarizeTimeout time.Duration
	ToneTimeout      time.Duration
	MaxBodyChars     int
	ChunkMaxChars    int
}

func (c Config) withDefaults() Config {
	if c.MessageTimeout == 0 {
		c.MessageTimeout = 60 * time.Second
	}
	if c.SummarizeTimeout == 0 {
		c.SummarizeTimeout = 45 * time.Second
	}
	if c.ToneTimeout == 0 {
		c.ToneTimeout = 20 * time.Second
	}
	if c.MaxBodyChars == 0 {
		c.MaxBodyChars = 8000
	}
	if c.ChunkMaxChars == 0 {
		c.ChunkMaxChars = chunk.DefaultMaxChars
	}
	return c
}

// Orchestrator produces one EmailResult per message. It never lets a
// failure escape: every stage degrades into a placeholder and assembly
// itself cannot fail.
type Orchestrator struct {
	summarizer *llm.Summarizer
	toner      *llm.Toner
	cfg        Config
	log        zerolog.Logger
	now        func() time.Time
}

// NewOrchestrator wires the engines under the given budgets.
func NewOrchestrator(summarizer *llm.Summarizer, toner *llm.Toner, cfg Config, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		summarizer: summarizer,
		toner:      toner,
		cfg:        cfg.withDefaults(),
		log:        log.With().Str("component", "orchestrator").Logger(),
		now:        time.Now,
	}
}

// ProcessList runs the pipeline over envelopes one at a time. A message
// that fails or times out still yields a structurally valid record and
// never aborts the rest of the batch.
func (o *Orchestrator) ProcessList(ctx context.Context, envelopes []*domain.Envelope) []*domain.EmailResult {
	results := make([]*domain.EmailResult, 0, len(envelopes))
	for _, env := range envelopes {
		results = append(results, o.ProcessEnvelope(ctx, env))
	}
	return results
}

// ProcessEnvelope runs the whole pipeline for one message under the
// per-message deadline. When the deadline elapses the in-flight work is
// cancelled best-effort and a fixed timeout record is returned; a late
// completion is discarded.
func (o *Orchestrator) ProcessEnvelope(ctx context.Context, env *domain.Envelope) *domain.EmailResult {
	msgCtx, cancel := context.WithTimeout(ctx, o.cfg.MessageTimeout)
	defer cancel()

	done := make(chan *domain.EmailResult, 1)
	go func() {
		done <- o.processMessage(msgCtx, env)
	}()

	select {
	case res := <-done:
		return res
	case <-msgCtx.Done():
		o.log.Warn().Str("id", env.ID).Msg("message processing timed out")
		return &domain.EmailResult{
			ID:       env.ID,
			Subject:  messageTimeoutSubject,
			From:     "(unknown)",
			DaysLeft: domain.NoDeadline,
			Urgency:  deadline.Urgency(domain.NoDeadline),
			Summary:  messageTimeoutSummary,
			Tone:     llm.ToneUnavailable,
		}
	}
}

// processMessage is the happy path plus its local degradations. The
// recover guard is the outermost conversion point: whatever escapes the
// lower layers becomes an "Error: ..." record here.
func (o *Orchestrator) processMessage(ctx context.Context, env *domain.Envelope) (res *domain.EmailResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().Str("id", env.ID).Interface("panic", r).Msg("message processing panicked")
			res = o.errorResult(env.ID, fmt.Errorf("%v", r))
		}
	}()

	o.log.Debug().Str("id", env.ID).Str("subject", env.Subject).Msg("processing message")

	body := extract.FromPayload(env.Payload)

	// Deadline scoring reads the raw body head and has no dependency on
	// the LLM stages.
	daysLeft, urgency := o.scoreDeadline(body)

	if len(body) > o.cfg.MaxBodyChars {
		o.log.Warn().Str("id", env.ID).Int("chars", len(body)).Msg("large body, truncating")
		body = body[:o.cfg.MaxBodyChars] + bodyTruncatedMarker
	}

	summary, tone := o.summarizeAndTone(ctx, body)

	subject := env.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	from := env.From
	if from == "" {
		from = "(unknown sender)"
	}

	return &domain.EmailResult{
		ID:       env.ID,
		Subject:  subject,
		From:     from,
		Date:     env.Date,
		Snippet:  env.Snippet,
		DaysLeft: daysLeft,
		Urgency:  urgency,
		Summary:  summary,
		Tone:     tone,
	}
}

// summarizeAndTone runs the two LLM stages under their own deadlines.
// Tone is computed from the summary, never from the raw body, so it is
// skipped entirely when summarization timed out or produced nothing.
func (o *Orchestrator) summarizeAndTone(ctx context.Context, body string) (summary, tone string) {
	chunks := chunk.Split(body, o.cfg.ChunkMaxChars)

	sum := runStage(ctx, o.cfg.SummarizeTimeout, func(stageCtx context.Context) string {
		return o.summarizer.Summarize(stageCtx, chunks)
	})
	if sum.timedOut {
		o.log.Warn().Msg("summarization timed out")
		return timeoutSummary, llm.ToneUnavailable
	}
	if sum.value == "" {
		return "", ""
	}

	tn := runStage(ctx, o.cfg.ToneTimeout, func(stageCtx context.Context) string {
		return o.toner.Classify(stageCtx, sum.value)
	})
	if tn.timedOut {
		o.log.Warn().Msg("tone analysis timed out")
		return sum.value, llm.ToneUnavailable
	}
	return sum.value, tn.value
}

func (o *Orchestrator) scoreDeadline(body string) (daysLeft, urgency int) {
	daysLeft = domain.NoDeadline
	if dt, ok := deadline.Extract(body); ok {
		daysLeft = deadline.DaysLeft(dt, o.now())
	}
	return daysLeft, deadline.Urgency(daysLeft)
}

func (o *Orchestrator) errorResult(id string, err error) *domain.EmailResult {
	msg := err.Error()
	if len(msg) > 100 {
		msg = msg[:100]
	}
	return &domain.EmailResult{
		ID:       id,
		Subject:  "(Error)",
		From:     "(unknown)",
		DaysLeft: domain.NoDeadline,
		Urgency:  deadline.Urgency(domain.NoDeadline),
		Summary:  "Error: " + msg,
		Tone:     llm.ToneUnavailable,
	}
}

// ProcessUpload runs the single-message path over raw MIME bytes. The
// caller is expected to have validated the payload is an email
// container; a payload with no readable text is rejected.
func (o *Orchestrator) ProcessUpload(ctx context.Context, raw []byte) (*domain.UploadResult, error) {
	ext := extract.FromRawMIME(raw)
	if strings.TrimSpace(ext.Body) == "" {
		return nil, apperr.NoReadableText()
	}

	body := ext.Body
	if len(body) > o.cfg.MaxBodyChars {
		body = body[:o.cfg.MaxBodyChars]
	}

	chunks := chunk.Split(body, o.cfg.ChunkMaxChars)
	summary := o.summarizer.Summarize(ctx, chunks)

	tone := ""
	if summary != "" {
		tone = o.toner.Classify(ctx, summary)
	}

	return &domain.UploadResult{
		Summary:  summary,
		Tone:     tone,
		RawEmail: body,
	}, nil
}

// stageResult is the tagged outcome of racing a stage against its
// deadline.
type stageResult struct {
	value    string
	timedOut bool
	panicked any
}

// runStage races fn against d. On timeout the stage context is
// cancelled and the eventual result, if any, is discarded; a late cache
// write by the loser is a keyed, idempotent put and remains safe. A
// panic inside fn is resurfaced on the calling goroutine so the
// orchestrator's recover guard still sees it.
func runStage(ctx context.Context, d time.Duration, fn func(context.Context) string) stageResult {
	stageCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan stageResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- stageResult{panicked: r}
			}
		}()
		done <- stageResult{value: fn(stageCtx)}
	}()

	select {
	case res := <-done:
		if res.panicked != nil {
			panic(res.panicked)
		}
		return res
	case <-stageCtx.Done():
		return stageResult{timedOut: true}
	}
}
