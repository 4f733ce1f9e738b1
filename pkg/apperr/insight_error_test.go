package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"bad request", BadRequest("nope"), CodeBadRequest, 400},
		{"unsupported media", UnsupportedMedia("not eml"), CodeUnsupportedMedia, 400},
		{"no readable text", NoReadableText(), CodeNoReadableText, 422},
		{"upstream", Upstream("completions", errors.New("boom")), CodeUpstreamError, 502},
		{"rate limited", RateLimited("completions"), CodeRateLimited, 429},
		{"stage timeout", StageTimeout("summarize"), CodeStageTimeout, 504},
		{"message timeout", MessageTimeout("m1"), CodeMessageTimeout, 504},
		{"internal", Internal(""), CodeInternalError, 500},
		{"config", ConfigError("missing key"), CodeConfigError, 500},
		{"not configured", NotConfigured("mailbox"), CodeNotConfigured, 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("completions", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("AppError must survive further wrapping")
	}
	if appErr.Code != CodeUpstreamError {
		t.Errorf("code = %q", appErr.Code)
	}
}

func TestAsAppErrorPlainError(t *testing.T) {
	got := AsAppError(errors.New("something"))
	if got.Code != CodeInternalError || got.Status != 500 {
		t.Errorf("plain errors must map to internal: %+v", got)
	}
}

func TestIsUpstream(t *testing.T) {
	if !IsUpstream(Upstream("x", errors.New("y"))) {
		t.Error("expected upstream")
	}
	if IsUpstream(BadRequest("z")) {
		t.Error("bad request is not upstream")
	}
}

func TestGetHTTPStatus(t *testing.T) {
	if got := GetHTTPStatus(NoReadableText()); got != 422 {
		t.Errorf("got %d", got)
	}
	if got := GetHTTPStatus(errors.New("plain")); got != 500 {
		t.Errorf("got %d", got)
	}
}
