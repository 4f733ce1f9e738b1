// Package gmail adapts the Gmail API to the mailbox source port.
package gmail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"insight_server/core/domain"
	"insight_server/core/port/out"
)

// Source implements out.MailboxSource for Gmail.
type Source struct {
	service *gmail.Service
	email   string
	log     zerolog.Logger
}

// NewSource builds a Source over an authorized OAuth token.
func NewSource(ctx context.Context, token *oauth2.Token, config *oauth2.Config, log zerolog.Logger) (*Source, error) {
	client := config.Client(ctx, token)
	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	profile, err := service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return &Source{
		service: service,
		email:   profile.EmailAddress,
		log:     log.With().Str("component", "gmail_source").Logger(),
	}, nil
}

// Email returns the mailbox owner's address.
func (s *Source) Email() string {
	return s.email
}

// List fetches inbox messages in full format. Message bodies are
// fetched in parallel with bounded concurrency (5 workers) to avoid
// rate limiting; a message whose fetch fails is dropped, the rest of
// the batch survives.
func (s *Source) List(ctx context.Context, query out.ListQuery) ([]*domain.Envelope, error) {
	req := s.service.Users.Messages.List("me").Q(buildQuery(query))
	if query.MaxResults > 0 {
		req = req.MaxResults(int64(query.MaxResults))
	}

	resp, err := req.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if len(resp.Messages) == 0 {
		return []*domain.Envelope{}, nil
	}

	const maxConcurrency = 5
	type result struct {
		index int
		id    string
		env   *domain.Envelope
		err   error
	}

	results := make(chan result, len(resp.Messages))
	semaphore := make(chan struct{}, maxConcurrency)

	for i, m := range resp.Messages {
		go func(idx int, msgID string) {
			semaphore <- struct{}{}        // acquire
			defer func() { <-semaphore }() // release

			env, err := s.getEnvelope(ctx, msgID)
			results <- result{index: idx, id: msgID, env: env, err: err}
		}(i, m.Id)
	}

	// Collect results in order
	ordered := make([]*domain.Envelope, len(resp.Messages))
	for range resp.Messages {
		r := <-results
		if r.err != nil {
			s.log.Warn().Err(r.err).Str("id", r.id).Msg("message fetch failed, dropping from batch")
			continue
		}
		if r.env != nil {
			ordered[r.index] = r.env
		}
	}

	envelopes := make([]*domain.Envelope, 0, len(ordered))
	for _, env := range ordered {
		if env != nil {
			envelopes = append(envelopes, env)
		}
	}

	return envelopes, nil
}

func (s *Source) getEnvelope(ctx context.Context, messageID string) (*domain.Envelope, error) {
	msg, err := s.service.Users.Messages.Get("me", messageID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return parseEnvelope(msg), nil
}

// buildQuery narrows the inbox listing. Primary mail is always
// included; updates and promotions are opt-in.
func buildQuery(query out.ListQuery) string {
	terms := []string{"in:inbox"}
	if !query.IncludeUpdates {
		terms = append(terms, "-category:updates")
	}
	if !query.IncludePromotions {
		terms = append(terms, "-category:promotions")
	}
	return strings.Join(terms, " ")
}

func parseEnvelope(msg *gmail.Message) *domain.Envelope {
	env := &domain.Envelope{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				env.Subject = header.Value
			case "From":
				env.From = header.Value
			case "Date":
				env.Date = header.Value
			}
		}
		env.Payload = convertPart(msg.Payload)
	}

	return env
}

func convertPart(part *gmail.MessagePart) *domain.Part {
	if part == nil {
		return nil
	}

	p := &domain.Part{
		MimeType: part.MimeType,
		Filename: part.Filename,
	}
	if part.Body != nil {
		p.Data = part.Body.Data
	}
	for _, header := range part.Headers {
		if header.Name == "Content-Disposition" {
			p.Disposition = header.Value
		}
	}
	for _, child := range part.Parts {
		if converted := convertPart(child); converted != nil {
			p.Parts = append(p.Parts, converted)
		}
	}

	return p
}

// Ensure Source implements out.MailboxSource
var _ out.MailboxSource = (*Source)(nil)
