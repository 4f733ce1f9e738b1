package extract

import (
	"encoding/base64"
	"strings"

	"insight_server/core/domain"
)

// FromPayload extracts the plain text body from a provider part tree.
// The whole tree is walked depth-first, collecting text/plain and
// text/html candidates separately; any non-empty plain-text collection
// is preferred over the (stripped) HTML collection.
func FromPayload(payload *domain.Part) string {
	if payload == nil {
		return ""
	}

	// A bare leaf message has no children; treat it as its own candidate.
	switch payload.MimeType {
	case "text/plain":
		if text := strings.TrimSpace(decodePartData(payload.Data)); text != "" {
			return text
		}
	case "text/html":
		if html := strings.TrimSpace(decodePartData(payload.Data)); html != "" {
			return StripHTML(html)
		}
	}

	var plain, html []string
	walkParts(payload.Parts, &plain, &html)

	if joined := strings.TrimSpace(strings.Join(plain, " ")); joined != "" {
		return joined
	}
	if joined := strings.TrimSpace(strings.Join(html, " ")); joined != "" {
		return StripHTML(joined)
	}
	return ""
}

func walkParts(parts []*domain.Part, plain, html *[]string) {
	for _, p := range parts {
		if p == nil {
			continue
		}
		if p.Filename != "" || strings.Contains(p.Disposition, "attachment") {
			continue
		}
		switch p.MimeType {
		case "text/plain":
			if text := decodePartData(p.Data); text != "" {
				*plain = append(*plain, text)
			}
		case "text/html":
			if text := decodePartData(p.Data); text != "" {
				*html = append(*html, text)
			}
		}
		walkParts(p.Parts, plain, html)
	}
}

// decodePartData decodes a base64url part body. Providers are not
// consistent about padding, so both variants are tried; failures yield
// an empty string rather than an error.
func decodePartData(data string) string {
	if data == "" {
		return ""
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}
