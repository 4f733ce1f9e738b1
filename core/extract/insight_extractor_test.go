package extract

import (
	"strings"
	"testing"
)

func TestFromRawMIMEPlainText(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"To: bob@example.com\r\n" +
		"Subject: Quarterly report\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Please review the attached figures before Friday.\r\n"

	got := FromRawMIME([]byte(raw))

	if got.Subject != "Quarterly report" {
		t.Errorf("subject = %q", got.Subject)
	}
	if got.From != "alice@example.com" {
		t.Errorf("from = %q", got.From)
	}
	if got.Body != "Please review the attached figures before Friday." {
		t.Errorf("body = %q", got.Body)
	}
}

func TestFromRawMIMEPrefersPlainOverHTML(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: Alternative\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><b>Rich</b> version</body></html>\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Plain version\r\n" +
		"--BOUND--\r\n"

	got := FromRawMIME([]byte(raw))
	if got.Body != "Plain version" {
		t.Errorf("expected the plain part verbatim, got %q", got.Body)
	}
}

func TestFromRawMIMEHTMLOnlyStripsMarkup(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: HTML only\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>.x{color:red}</style>" +
		"<script>alert('hi')</script></head>" +
		"<body><p>Invoice is due &amp; payable.</p></body></html>\r\n" +
		"--BOUND--\r\n"

	got := FromRawMIME([]byte(raw))

	if got.Body == "" {
		t.Fatal("expected text from the html part")
	}
	if strings.ContainsAny(got.Body, "<>") {
		t.Errorf("markup survived stripping: %q", got.Body)
	}
	if strings.Contains(got.Body, "alert") || strings.Contains(got.Body, "color:red") {
		t.Errorf("script/style content survived: %q", got.Body)
	}
	if !strings.Contains(got.Body, "Invoice is due & payable.") {
		t.Errorf("entities not decoded: %q", got.Body)
	}
}

func TestFromRawMIMESkipsAttachments(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: With attachment\r\n" +
		"Content-Type: multipart/mixed; boundary=MIX\r\n" +
		"\r\n" +
		"--MIX\r\n" +
		"Content-Type: text/plain; name=notes.txt\r\n" +
		"Content-Disposition: attachment; filename=notes.txt\r\n" +
		"\r\n" +
		"attachment contents must not leak\r\n" +
		"--MIX\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Actual message body\r\n" +
		"--MIX--\r\n"

	got := FromRawMIME([]byte(raw))
	if got.Body != "Actual message body" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestFromRawMIMENestedMultipart(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: Nested\r\n" +
		"Content-Type: multipart/mixed; boundary=OUTER\r\n" +
		"\r\n" +
		"--OUTER\r\n" +
		"Content-Type: multipart/alternative; boundary=INNER\r\n" +
		"\r\n" +
		"--INNER\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Nested plain body\r\n" +
		"--INNER--\r\n" +
		"--OUTER--\r\n"

	got := FromRawMIME([]byte(raw))
	if got.Body != "Nested plain body" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestFromRawMIMEBase64Body(t *testing.T) {
	// "Budget approval needed" wrapped the way senders wrap base64.
	raw := "From: a@example.com\r\n" +
		"Subject: Encoded\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"QnVkZ2V0IGFwcHJv\r\ndmFsIG5lZWRlZA==\r\n"

	got := FromRawMIME([]byte(raw))
	if got.Body != "Budget approval needed" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestFromRawMIMEQuotedPrintableBody(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: QP\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Caf=C3=A9 meeting at noon\r\n"

	got := FromRawMIME([]byte(raw))
	if got.Body != "Café meeting at noon" {
		t.Errorf("body = %q", got.Body)
	}
}

func TestFromRawMIMEEncodedSubject(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: =?UTF-8?B?7ZqM7J2YIOyViOuCtA==?=\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"body\r\n"

	got := FromRawMIME([]byte(raw))
	if got.Subject != "회의 안내" {
		t.Errorf("subject = %q", got.Subject)
	}
}

func TestFromRawMIMEGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not an email", "this is not an rfc822 message at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRawMIME([]byte(tt.raw))
			if got.Body != "" {
				t.Errorf("expected empty body, got %q", got.Body)
			}
		})
	}
}

func TestFromRawMIMEEmptyBody(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Subject: Empty\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"   \r\n"

	got := FromRawMIME([]byte(raw))
	if got.Body != "" {
		t.Errorf("expected empty body, got %q", got.Body)
	}
}
