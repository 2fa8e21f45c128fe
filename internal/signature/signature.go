// Package signature derives stable request signatures and freshness
// stamps from canonicalized fact sets.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strings"

	"github.com/dmarchetti/responsa/internal/model"
)

// serializationVersion is mixed into every digest so a format change
// invalidates old signatures wholesale.
const serializationVersion = "responsa:sig:v1"

// Compute derives the query signature from a canonical serialization
// of the fact set. Fact entries are sorted before hashing so two
// extractions of the same query hash identically regardless of
// internal extraction order. An empty fact set still produces a
// valid, stable signature.
func Compute(set model.AtomicFactSet) model.QuerySignature {
	entries := make([]string, 0, len(set.Facts))
	for _, f := range set.Facts {
		entries = append(entries, string(f.Kind())+"|"+f.CanonicalValue())
	}
	sort.Strings(entries)

	h := sha256.New()
	_, _ = io.WriteString(h, serializationVersion)
	_, _ = io.WriteString(h, "\n")
	_, _ = io.WriteString(h, normalizeQuery(set.OriginalQuery))
	for _, e := range entries {
		_, _ = io.WriteString(h, "\n")
		_, _ = io.WriteString(h, e)
	}

	return model.QuerySignature(hex.EncodeToString(h.Sum(nil)))
}

// normalizeQuery lowercases and collapses whitespace so cosmetic
// differences in the raw query do not split the cache.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
