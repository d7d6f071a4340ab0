package services

import (
	"bytes"
	"io"
	"mime"
	"net/mail"
	"strings"

	"github.com/emersion/go-message"
	"golang.org/x/net/html"

	"github.com/warterbili/InterviewManager-system/internal/database/models"
	"github.com/warterbili/InterviewManager-system/internal/textenc"
)

// No charset encodings are registered with go-message on purpose: parts in
// gbk/gb2312 then surface an unknown-charset error, which is treated as
// non-fatal everywhere here, and the raw bytes reach textenc.Decode with the
// declared charset intact. Registering them would make go-message decode the
// body to UTF-8 first and the declared-charset pass would then mangle it.

const (
	// maxBodyChars caps the stored body length.
	maxBodyChars     = 10000
	truncationMarker = "..."
)

// normalizeMessage extracts a flat record from one raw RFC822 message.
// Header fields come through verbatim (empty when absent) except Subject,
// which passes through encoded-word decoding. The body is the best text
// representation the message offers, truncated to maxBodyChars.
func normalizeMessage(imapID string, raw []byte) models.JobEmail {
	rec := models.JobEmail{ImapID: imapID}

	entity, err := message.Read(bytes.NewReader(raw))
	if entity == nil || (err != nil && !tolerableMIMEError(err)) {
		// Not MIME-parseable; salvage what net/mail can read.
		m, merr := mail.ReadMessage(bytes.NewReader(raw))
		if merr != nil {
			log.WithField("imap_id", imapID).Warn("Unparseable message, keeping empty record")
			return rec
		}
		rec.Subject = textenc.DecodeHeader(m.Header.Get("Subject"))
		rec.Sender = m.Header.Get("From")
		rec.Recipient = m.Header.Get("To")
		rec.SendDate = m.Header.Get("Date")
		if b, rerr := io.ReadAll(m.Body); rerr == nil {
			rec.Body = truncateBody(textenc.Decode(b, ""))
		}
		return rec
	}

	rec.Subject = textenc.DecodeHeader(entity.Header.Get("Subject"))
	rec.Sender = entity.Header.Get("From")
	rec.Recipient = entity.Header.Get("To")
	rec.SendDate = entity.Header.Get("Date")
	rec.Body = truncateBody(extractBody(entity))
	return rec
}

// extractBody picks the best text representation of the message body.
// Multipart messages are scanned part by part; single-part payloads are
// decoded directly, without HTML stripping even for text/html.
func extractBody(entity *message.Entity) string {
	mediaType, params, _ := entity.Header.ContentType()
	if strings.HasPrefix(mediaType, "multipart/") {
		var scan bodyScan
		scan.walk(entity)
		if scan.hasPlain {
			return scan.plain
		}
		return scan.html
	}

	b, err := io.ReadAll(entity.Body)
	if err != nil {
		return ""
	}
	return textenc.Decode(b, params["charset"])
}

type bodyScan struct {
	plain    string
	hasPlain bool
	html     string
}

// walk visits parts in structural order. The first text/plain part wins and
// stops the scan; text/html parts keep overwriting, so the last one decoded
// is used when no plain part exists. Attachment parts and parts that fail
// to read are skipped; a failed part never stops the scan as long as the
// reader keeps producing parts.
func (s *bodyScan) walk(entity *message.Entity) bool {
	mr := entity.MultipartReader()
	if mr == nil {
		return false
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if part == nil {
			break
		}
		if err != nil && !tolerableMIMEError(err) {
			continue
		}
		if isAttachment(part) {
			continue
		}

		mediaType, params, _ := part.Header.ContentType()
		switch {
		case strings.HasPrefix(mediaType, "multipart/"):
			if s.walk(part) {
				return true
			}
		case mediaType == "text/plain":
			b, rerr := io.ReadAll(part.Body)
			if rerr != nil {
				continue
			}
			s.plain = textenc.Decode(b, params["charset"])
			s.hasPlain = true
			return true
		case mediaType == "text/html":
			b, rerr := io.ReadAll(part.Body)
			if rerr != nil {
				continue
			}
			s.html = stripHTML(textenc.Decode(b, params["charset"]))
		}
	}
	return false
}

// tolerableMIMEError reports whether the entity carrying err is still usable.
// go-message flags unknown charsets and unknown transfer encodings this way
// while handing back the raw body, so both are processed rather than dropped.
func tolerableMIMEError(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}

// isAttachment reports whether the part is flagged as an attachment via its
// Content-Disposition header.
func isAttachment(part *message.Entity) bool {
	disposition := part.Header.Get("Content-Disposition")
	if disposition == "" {
		return false
	}
	dispType, _, err := mime.ParseMediaType(disposition)
	if err != nil {
		return strings.Contains(strings.ToLower(disposition), "attachment")
	}
	return dispType == "attachment"
}

// stripHTML drops markup and collapses whitespace runs to single spaces.
func stripHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncateBody(body string) string {
	r := []rune(body)
	if len(r) <= maxBodyChars {
		return body
	}
	return string(r[:maxBodyChars]) + truncationMarker
}
