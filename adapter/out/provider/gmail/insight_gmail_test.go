package gmail

import (
	"encoding/base64"
	"testing"

	gmailapi "google.golang.org/api/gmail/v1"

	"insight_server/core/port/out"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name  string
		query out.ListQuery
		want  string
	}{
		{
			name:  "defaults exclude categories",
			query: out.ListQuery{},
			want:  "in:inbox -category:updates -category:promotions",
		},
		{
			name:  "updates included",
			query: out.ListQuery{IncludeUpdates: true},
			want:  "in:inbox -category:promotions",
		},
		{
			name:  "everything included",
			query: out.ListQuery{IncludeUpdates: true, IncludePromotions: true},
			want:  "in:inbox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildQuery(tt.query); got != tt.want {
				t.Errorf("buildQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEnvelope(t *testing.T) {
	msg := &gmailapi.Message{
		Id:      "msg-1",
		Snippet: "Quarterly numbers attached",
		Payload: &gmailapi.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "Subject", Value: "Q1 Report"},
				{Name: "From", Value: "cfo@example.com"},
				{Name: "Date", Value: "Mon, 2 Mar 2026 09:00:00 +0000"},
				{Name: "X-Other", Value: "ignored"},
			},
			Parts: []*gmailapi.MessagePart{
				{
					MimeType: "text/plain",
					Body: &gmailapi.MessagePartBody{
						Data: base64.URLEncoding.EncodeToString([]byte("body text")),
					},
				},
			},
		},
	}

	env := parseEnvelope(msg)

	if env.ID != "msg-1" {
		t.Errorf("id = %q", env.ID)
	}
	if env.Subject != "Q1 Report" {
		t.Errorf("subject = %q", env.Subject)
	}
	if env.From != "cfo@example.com" {
		t.Errorf("from = %q", env.From)
	}
	if env.Date != "Mon, 2 Mar 2026 09:00:00 +0000" {
		t.Errorf("date = %q", env.Date)
	}
	if env.Snippet != "Quarterly numbers attached" {
		t.Errorf("snippet = %q", env.Snippet)
	}
	if env.Payload == nil || len(env.Payload.Parts) != 1 {
		t.Fatalf("payload tree not converted: %+v", env.Payload)
	}
	if env.Payload.Parts[0].MimeType != "text/plain" {
		t.Errorf("part mime = %q", env.Payload.Parts[0].MimeType)
	}
}

func TestConvertPartCarriesDisposition(t *testing.T) {
	part := &gmailapi.MessagePart{
		MimeType: "application/pdf",
		Filename: "invoice.pdf",
		Headers: []*gmailapi.MessagePartHeader{
			{Name: "Content-Disposition", Value: "attachment; filename=invoice.pdf"},
		},
		Body: &gmailapi.MessagePartBody{Data: "ZGF0YQ=="},
	}

	got := convertPart(part)
	if got.Filename != "invoice.pdf" {
		t.Errorf("filename = %q", got.Filename)
	}
	if got.Disposition != "attachment; filename=invoice.pdf" {
		t.Errorf("disposition = %q", got.Disposition)
	}
	if got.Data != "ZGF0YQ==" {
		t.Errorf("data = %q", got.Data)
	}
}

func TestConvertPartNil(t *testing.T) {
	if got := convertPart(nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
