package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func multipartMessage(parts ...string) []byte {
	var b strings.Builder
	b.WriteString("From: hr@company.example\r\n")
	b.WriteString("To: me@qq.com\r\n")
	b.WriteString("Date: Mon, 01 Sep 2025 10:00:00 +0800\r\n")
	b.WriteString("Subject: =?utf-8?B?6Z2i6K+V6YCa55+l?=\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=BOUND\r\n")
	b.WriteString("\r\n")
	for _, p := range parts {
		b.WriteString("--BOUND\r\n")
		b.WriteString(p)
		b.WriteString("\r\n")
	}
	b.WriteString("--BOUND--\r\n")
	return []byte(b.String())
}

func TestNormalize_Headers(t *testing.T) {
	raw := multipartMessage(
		"Content-Type: text/plain; charset=utf-8\r\n\r\nhello",
	)
	rec := normalizeMessage("42", raw)

	if rec.ImapID != "42" {
		t.Errorf("ImapID = %q, want %q", rec.ImapID, "42")
	}
	if rec.Subject != "面试通知" {
		t.Errorf("Subject = %q, want decoded subject", rec.Subject)
	}
	if rec.Sender != "hr@company.example" {
		t.Errorf("Sender = %q", rec.Sender)
	}
	if rec.Recipient != "me@qq.com" {
		t.Errorf("Recipient = %q", rec.Recipient)
	}
	if rec.SendDate != "Mon, 01 Sep 2025 10:00:00 +0800" {
		t.Errorf("SendDate = %q", rec.SendDate)
	}
}

func TestNormalize_PlainPreemptsHTML(t *testing.T) {
	raw := multipartMessage(
		"Content-Type: text/html; charset=utf-8\r\n\r\n<p>html <b>first</b></p>",
		"Content-Type: text/plain; charset=utf-8\r\n\r\nplain body wins",
	)
	rec := normalizeMessage("1", raw)

	if rec.Body != "plain body wins" {
		t.Errorf("Body = %q, want plain part", rec.Body)
	}
}

func TestNormalize_LastHTMLUsedWhenNoPlain(t *testing.T) {
	raw := multipartMessage(
		"Content-Type: text/html; charset=utf-8\r\n\r\n<p>first   html</p>",
		"Content-Type: text/html; charset=utf-8\r\n\r\n<div>second\n\n  html</div>",
	)
	rec := normalizeMessage("1", raw)

	if rec.Body != "second html" {
		t.Errorf("Body = %q, want last html part stripped and collapsed", rec.Body)
	}
}

func TestNormalize_HTMLStrippedAndCollapsed(t *testing.T) {
	raw := multipartMessage(
		"Content-Type: text/html; charset=utf-8\r\n\r\n<html><body>We   would\nlike to <b>invite</b> you</body></html>",
	)
	rec := normalizeMessage("1", raw)

	if rec.Body != "We would like to invite you" {
		t.Errorf("Body = %q", rec.Body)
	}
}

func TestNormalize_AttachmentPartsSkipped(t *testing.T) {
	raw := multipartMessage(
		"Content-Type: text/plain; charset=utf-8\r\nContent-Disposition: attachment; filename=\"resume.txt\"\r\n\r\nattached text",
		"Content-Type: text/html; charset=utf-8\r\n\r\n<p>visible body</p>",
	)
	rec := normalizeMessage("1", raw)

	if rec.Body != "visible body" {
		t.Errorf("Body = %q, want attachment skipped", rec.Body)
	}
}

func TestNormalize_SinglePartHTMLNotStripped(t *testing.T) {
	raw := []byte("From: a@b.example\r\n" +
		"Subject: test\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>kept as-is</p>")
	rec := normalizeMessage("1", raw)

	if !strings.Contains(rec.Body, "<p>") {
		t.Errorf("Body = %q, want single-part html left unstripped", rec.Body)
	}
}

func TestNormalize_BadEncodingPartDoesNotAbortScan(t *testing.T) {
	// An unreadable transfer encoding on an earlier part must not stop the
	// scan; the later text/plain part still wins.
	raw := multipartMessage(
		"Content-Type: application/pdf\r\nContent-Transfer-Encoding: x-weird\r\n\r\n%PDF-1.4 garbage",
		"Content-Type: text/plain; charset=utf-8\r\n\r\nstill reachable",
	)
	rec := normalizeMessage("1", raw)

	if rec.Body != "still reachable" {
		t.Errorf("Body = %q, want later plain part to survive earlier bad part", rec.Body)
	}
}

func TestNormalize_BadEncodingHTMLStillConsidered(t *testing.T) {
	// go-message hands back the raw body alongside an unknown-encoding
	// error; the part stays a body candidate.
	raw := multipartMessage(
		"Content-Type: text/html; charset=utf-8\r\nContent-Transfer-Encoding: x-weird\r\n\r\n<p>raw but readable</p>",
	)
	rec := normalizeMessage("1", raw)

	if rec.Body != "raw but readable" {
		t.Errorf("Body = %q, want html part decoded despite unknown encoding", rec.Body)
	}
}

func TestNormalize_UnknownEncodingTopLevel(t *testing.T) {
	raw := []byte("From: a@b.example\r\n" +
		"Subject: =?utf-8?B?6Z2i6K+V?=\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: x-token\r\n" +
		"\r\n" +
		"plain despite odd encoding")
	rec := normalizeMessage("3", raw)

	if rec.Subject != "面试" {
		t.Errorf("Subject = %q, want MIME path despite unknown encoding", rec.Subject)
	}
	if rec.Body != "plain despite odd encoding" {
		t.Errorf("Body = %q", rec.Body)
	}
}

func TestNormalize_MissingHeadersEmpty(t *testing.T) {
	raw := []byte("Content-Type: text/plain; charset=utf-8\r\n\r\nbody only")
	rec := normalizeMessage("7", raw)

	if rec.Subject != "" || rec.Sender != "" || rec.Recipient != "" || rec.SendDate != "" {
		t.Errorf("missing headers should be empty, got %+v", rec)
	}
	if rec.Body != "body only" {
		t.Errorf("Body = %q", rec.Body)
	}
}

func TestNormalize_GBKBodyDecoded(t *testing.T) {
	// "你好" in GBK, labeled as gb2312.
	raw := append([]byte("From: a@b.example\r\n"+
		"Content-Type: text/plain; charset=gb2312\r\n"+
		"\r\n"), 0xC4, 0xE3, 0xBA, 0xC3)
	rec := normalizeMessage("1", raw)

	if rec.Body != "你好" {
		t.Errorf("Body = %q, want %q", rec.Body, "你好")
	}
}

func TestTruncateBody(t *testing.T) {
	short := strings.Repeat("a", maxBodyChars)
	if got := truncateBody(short); got != short {
		t.Errorf("body of exactly %d chars must be unchanged", maxBodyChars)
	}

	long := strings.Repeat("b", maxBodyChars+1)
	got := truncateBody(long)
	if utf8.RuneCountInString(got) != maxBodyChars+len(truncationMarker) {
		t.Errorf("truncated length = %d", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Errorf("truncated body must end with marker")
	}
	if got[:maxBodyChars] != long[:maxBodyChars] {
		t.Errorf("truncated prefix mismatch")
	}
}

func TestNormalize_LongBodyTruncated(t *testing.T) {
	body := strings.Repeat("x", maxBodyChars+500)
	raw := []byte("From: a@b.example\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" + body)
	rec := normalizeMessage("1", raw)

	if utf8.RuneCountInString(rec.Body) != maxBodyChars+len(truncationMarker) {
		t.Errorf("Body length = %d, want %d", utf8.RuneCountInString(rec.Body), maxBodyChars+len(truncationMarker))
	}
}

// normalizeMessage must survive arbitrary input: garbage bytes still yield a
// record carrying the imap id and a valid UTF-8 body.
func TestProperty_NormalizeNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("normalize_total_over_raw_bytes", prop.ForAll(
		func(raw []byte) bool {
			rec := normalizeMessage("99", raw)
			return rec.ImapID == "99" && utf8.ValidString(rec.Body) && utf8.ValidString(rec.Subject)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
