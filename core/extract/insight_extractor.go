// Package extract normalizes raw emails into a single plain-text body.
// Extraction is never fatal to the pipeline: when no readable part
// exists the result is simply empty.
package extract

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// Extracted is the normalized text body of one message plus the header
// metadata the pipeline reports back. Body never contains raw markup.
type Extracted struct {
	Subject string
	From    string
	To      string
	Body    string
}

// partText is the outcome of decoding one MIME part: either usable text
// of a known type, or a skip with its reason. Aggregation takes the
// first usable part of the preferred kind, which keeps the fallback
// chain an explicit priority list.
type partText struct {
	mimeType   string
	text       string
	skipReason string
}

func (p partText) ok() bool { return p.skipReason == "" }

// FromRawMIME extracts the best-effort plain text body from raw message
// bytes. Preference order: first non-empty text/plain part, then first
// non-empty text/html part with tags stripped. Attachments and parts
// that fail to decode are skipped, never fatal.
func FromRawMIME(raw []byte) Extracted {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return Extracted{}
	}

	dec := new(mime.WordDecoder)
	out := Extracted{
		Subject: decodeHeader(dec, msg.Header.Get("Subject")),
		From:    decodeHeader(dec, msg.Header.Get("From")),
		To:      decodeHeader(dec, msg.Header.Get("To")),
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		parts := collectParts(msg.Body, params["boundary"])
		out.Body = pickBody(parts)
		return out
	}

	body, err := decodeBody(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
	if err != nil {
		return out
	}
	text := strings.TrimSpace(body)
	if text == "" {
		return out
	}
	if mediaType == "text/html" {
		out.Body = StripHTML(text)
	} else {
		out.Body = text
	}
	return out
}

// pickBody applies the two-pass preference over decoded parts.
func pickBody(parts []partText) string {
	for _, p := range parts {
		if p.ok() && p.mimeType == "text/plain" && strings.TrimSpace(p.text) != "" {
			return strings.TrimSpace(p.text)
		}
	}
	for _, p := range parts {
		if p.ok() && p.mimeType == "text/html" && strings.TrimSpace(p.text) != "" {
			if stripped := StripHTML(p.text); stripped != "" {
				return stripped
			}
		}
	}
	return ""
}

// collectParts walks a multipart body in document order, recursing into
// nested multiparts, and records one partText per leaf.
func collectParts(r io.Reader, boundary string) []partText {
	if boundary == "" {
		return nil
	}

	var parts []partText
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		if strings.Contains(part.Header.Get("Content-Disposition"), "attachment") {
			parts = append(parts, partText{skipReason: "attachment"})
			continue
		}

		mediaType, params, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil {
			mediaType = "text/plain"
		}

		if strings.HasPrefix(mediaType, "multipart/") {
			parts = append(parts, collectParts(part, params["boundary"])...)
			continue
		}

		text, err := decodePart(part)
		if err != nil {
			parts = append(parts, partText{mimeType: mediaType, skipReason: "decode failed"})
			continue
		}
		parts = append(parts, partText{mimeType: mediaType, text: text})
	}
	return parts
}

// decodePart reads one leaf part, applying its transfer encoding. The
// multipart reader already transparently decodes quoted-printable; only
// encodings it leaves alone are handled here.
func decodePart(part *multipart.Part) (string, error) {
	return decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding"))
}

func decodeBody(r io.Reader, encoding string) (string, error) {
	return decodeTransfer(r, encoding)
}

func decodeTransfer(r io.Reader, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, newWhitespaceStripper(r))
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeHeader decodes RFC 2047 encoded words, falling back to the raw
// value when decoding fails.
func decodeHeader(dec *mime.WordDecoder, value string) string {
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// whitespaceStripper filters line breaks out of base64 bodies before
// decoding, since transfer-encoded payloads are wrapped at 76 columns.
type whitespaceStripper struct {
	r io.Reader
}

func newWhitespaceStripper(r io.Reader) io.Reader {
	return &whitespaceStripper{r: r}
}

func (w *whitespaceStripper) Read(p []byte) (int, error) {
	buf := make([]byte, len(p))
	n, err := w.r.Read(buf)
	kept := 0
	for _, b := range buf[:n] {
		switch b {
		case '\r', '\n', ' ', '\t':
		default:
			p[kept] = b
			kept++
		}
	}
	if kept == 0 && err == nil && n > 0 {
		return w.Read(p)
	}
	return kept, err
}
