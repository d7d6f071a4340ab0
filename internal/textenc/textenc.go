// Package textenc converts raw mail payloads and MIME header fragments into
// readable UTF-8 text. Mail from Chinese providers (QQ, 163) frequently
// carries GBK/GB2312 bodies with absent or mislabeled charset declarations,
// so decoding is best-effort: a declared charset is tried first, then an
// ordered ladder of candidate encodings, and finally a forced UTF-8 decode
// that drops undecodable sequences. Decode never fails.
package textenc

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// ladder lists the candidate encodings consulted in order when no charset is
// declared or the declared one fails. UTF-8 is checked directly; GBK is a
// superset of GB2312, and GB18030 covers the rest of the simplified-Chinese
// plane; Latin-1 accepts any byte sequence and acts as the catch-all rung.
var ladder = []encoding.Encoding{
	nil, // UTF-8, validated without transformation
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
	charmap.ISO8859_1,
}

// Decode converts b into a string. If declaredCharset is non-empty it is
// tried strictly first; on failure the ladder takes over. The final fallback
// re-interprets b as UTF-8 and discards invalid sequences, so the result is
// always valid UTF-8.
func Decode(b []byte, declaredCharset string) string {
	if len(b) == 0 {
		return ""
	}

	if declaredCharset != "" {
		if s, ok := decodeWith(lookupEncoding(declaredCharset), b); ok {
			return s
		}
	}

	for _, enc := range ladder {
		if s, ok := decodeWith(enc, b); ok {
			return s
		}
	}

	return strings.ToValidUTF8(string(b), "")
}

// DecodeHeader decodes RFC 2047 encoded-word segments in a header value,
// concatenating decoded segments in order. Segments that are not encoded
// words pass through unchanged, as does the whole value when decoding fails.
func DecodeHeader(s string) string {
	if s == "" || !strings.Contains(s, "=?") {
		return s
	}
	decoded, err := headerDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// headerDecoder routes encoded-word payloads through the same charset ladder
// used for bodies, so GBK-tagged (or mistagged) subjects decode too.
var headerDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, r io.Reader) (io.Reader, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return strings.NewReader(Decode(b, charset)), nil
	},
}

// decodeWith attempts a strict decode of b with enc. A nil enc means UTF-8.
// Decoders in x/text substitute U+FFFD for undecodable input instead of
// failing, so any replacement rune in the output counts as a failure here.
func decodeWith(enc encoding.Encoding, b []byte) (string, bool) {
	if enc == nil {
		if utf8.Valid(b) {
			return string(b), true
		}
		return "", false
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// lookupEncoding resolves a declared charset name to an encoding. Unknown
// names return nil, which decodeWith treats as a UTF-8 validity check.
func lookupEncoding(name string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return nil
	case "gbk", "gb2312", "cp936":
		return simplifiedchinese.GBK
	case "gb18030":
		return simplifiedchinese.GB18030
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1
	}
	enc, err := ianaindex.MIME.Encoding(name)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}
