// Package identity derives the deduplication key and the coarse content type
// of captured text. Everything here is pure and deterministic.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
)

// Identity is the result of classifying one capture.
type Identity struct {
	Hash        string
	ContentType models.ContentType
}

// Normalize returns the form of text used for hashing and classification.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// Hash returns the hex md5 digest of the trimmed text. Identical text after
// trimming always yields the same digest.
func Hash(text string) string {
	sum := md5.Sum([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// DetectType classifies trimmed text as url, email, numeric or plain text.
func DetectType(text string) models.ContentType {
	t := Normalize(text)
	switch {
	case strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://"):
		return models.ContentTypeURL
	case strings.Contains(t, "@") && strings.Contains(t, "."):
		return models.ContentTypeEmail
	case t != "" && isNumeric(t):
		return models.ContentTypeNumeric
	default:
		return models.ContentTypeText
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Identify computes hash and content type in one call.
func Identify(text string) Identity {
	return Identity{Hash: Hash(text), ContentType: DetectType(text)}
}
