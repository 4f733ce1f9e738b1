package out

import "context"

// PromptRequest is one completion call to the upstream LLM endpoint:
// exactly one system and one user message, plus sampling parameters.
// Zero values fall back to the client's configured defaults.
type PromptRequest struct {
	System      string
	User        string
	Model       string
	Temperature float32
	MaxTokens   int
}

// CompletionPort sends a prompt pair to an external completion endpoint
// and returns the first choice's trimmed content. Transport errors,
// timeouts, non-success statuses and malformed responses surface as an
// *apperr.AppError with the upstream error code.
type CompletionPort interface {
	Complete(ctx context.Context, req PromptRequest) (string, error)
}
