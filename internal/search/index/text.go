package index

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/kamusis/novagen/internal/catalog"
)

// CanonicalText returns the canonical text used for embeddings generation.
func CanonicalText(e catalog.Entry) string {
	parts := []string{
		"name: " + strings.TrimSpace(e.Name),
		"description: " + strings.TrimSpace(e.Description),
	}
	if c := strings.TrimSpace(e.Category); c != "" {
		parts = append(parts, "category: "+c)
	}
	if len(e.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(e.Tags, ", "))
	}
	return strings.Join(parts, "\n")
}

// TextHash returns a sha256 hash (hex) of the canonical text.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// CatalogDigest hashes the canonical text of every entry in order.
func CatalogDigest(c *catalog.Catalog) string {
	h := sha256.New()
	for _, e := range c.Entries() {
		h.Write([]byte(CanonicalText(e)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
