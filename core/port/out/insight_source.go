package out

import (
	"context"

	"insight_server/core/domain"
)

// ListQuery narrows a mailbox listing. Category exclusions mirror the
// Gmail search operators; providers without categories ignore them.
type ListQuery struct {
	MaxResults        int
	IncludeUpdates    bool
	IncludePromotions bool
}

// MailboxSource yields message envelopes from an already-authenticated
// mailbox. Implementations never initiate authentication and never
// mutate mailbox state.
type MailboxSource interface {
	List(ctx context.Context, query ListQuery) ([]*domain.Envelope, error)
}
