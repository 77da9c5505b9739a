package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Calculator computes document fingerprints.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content.
	CalculateNormalized(content []byte) string
}

// SHA256 implements Calculator using SHA-256.
// It is a zero-size value type and safe for concurrent use.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	hash := sha256.Sum256([]byte(c.normalize(string(content))))
	return hex.EncodeToString(hash[:])
}

func (c SHA256) normalize(content string) string {
	cleaned := c.removeComments(content)

	var b strings.Builder
	b.Grow(len(cleaned))

	pendingSpace := false
	var last rune
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 && !(last == '>' && r == '<') {
			b.WriteRune(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
		last = r
	}

	return b.String()
}

const (
	commentOpen  = "<!--"
	commentClose = "-->"
	cdataOpen    = "<![CDATA["
	cdataClose   = "]]>"
)

// removeComments strips XML comments, leaving CDATA content untouched.
// An unterminated comment swallows the rest of the input.
func (c SHA256) removeComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	for i := 0; i < len(content); {
		rest := content[i:]
		switch {
		case strings.HasPrefix(rest, cdataOpen):
			end := strings.Index(rest[len(cdataOpen):], cdataClose)
			if end < 0 {
				b.WriteString(rest)
				return b.String()
			}
			n := len(cdataOpen) + end + len(cdataClose)
			b.WriteString(rest[:n])
			i += n
		case strings.HasPrefix(rest, commentOpen):
			end := strings.Index(rest[len(commentOpen):], commentClose)
			if end < 0 {
				return b.String()
			}
			b.WriteByte(' ')
			i += len(commentOpen) + end + len(commentClose)
		default:
			b.WriteByte(content[i])
			i++
		}
	}
	return b.String()
}

var _ Calculator = SHA256{}
