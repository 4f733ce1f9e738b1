package extract

import (
	"encoding/base64"
	"strings"
	"testing"

	"insight_server/core/domain"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestFromPayloadNil(t *testing.T) {
	if got := FromPayload(nil); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestFromPayloadBareLeaf(t *testing.T) {
	payload := &domain.Part{
		MimeType: "text/plain",
		Data:     b64("Simple unstructured message"),
	}

	if got := FromPayload(payload); got != "Simple unstructured message" {
		t.Errorf("got %q", got)
	}
}

func TestFromPayloadPrefersPlainTree(t *testing.T) {
	payload := &domain.Part{
		MimeType: "multipart/alternative",
		Parts: []*domain.Part{
			{MimeType: "text/html", Data: b64("<b>Rich</b> version")},
			{MimeType: "text/plain", Data: b64("Plain version")},
		},
	}

	if got := FromPayload(payload); got != "Plain version" {
		t.Errorf("got %q", got)
	}
}

func TestFromPayloadHTMLFallback(t *testing.T) {
	payload := &domain.Part{
		MimeType: "multipart/alternative",
		Parts: []*domain.Part{
			{MimeType: "text/html", Data: b64("<p>Only an html body</p>")},
		},
	}

	got := FromPayload(payload)
	if got == "" {
		t.Fatal("expected text from html part")
	}
	if strings.ContainsAny(got, "<>") {
		t.Errorf("markup survived: %q", got)
	}
	if !strings.Contains(got, "Only an html body") {
		t.Errorf("got %q", got)
	}
}

func TestFromPayloadNestedParts(t *testing.T) {
	payload := &domain.Part{
		MimeType: "multipart/mixed",
		Parts: []*domain.Part{
			{
				MimeType: "multipart/alternative",
				Parts: []*domain.Part{
					{MimeType: "text/plain", Data: b64("Nested body")},
				},
			},
		},
	}

	if got := FromPayload(payload); got != "Nested body" {
		t.Errorf("got %q", got)
	}
}

func TestFromPayloadSkipsAttachments(t *testing.T) {
	payload := &domain.Part{
		MimeType: "multipart/mixed",
		Parts: []*domain.Part{
			{
				MimeType:    "text/plain",
				Filename:    "notes.txt",
				Disposition: "attachment; filename=notes.txt",
				Data:        b64("attachment text must not leak"),
			},
			{MimeType: "text/plain", Data: b64("Real body")},
		},
	}

	if got := FromPayload(payload); got != "Real body" {
		t.Errorf("got %q", got)
	}
}

func TestFromPayloadRawBase64Variant(t *testing.T) {
	// Unpadded base64url, as some providers emit.
	data := base64.RawURLEncoding.EncodeToString([]byte("unpadded body"))
	payload := &domain.Part{MimeType: "text/plain", Data: data}

	if got := FromPayload(payload); got != "unpadded body" {
		t.Errorf("got %q", got)
	}
}

func TestFromPayloadUndecodableData(t *testing.T) {
	payload := &domain.Part{MimeType: "text/plain", Data: "!!not-base64!!"}

	if got := FromPayload(payload); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
