// Package dedupe derives the stable identity a listing upsert is keyed on
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"micdrop/internal/core/textnorm"
)

// Identity is the computed upsert key for a candidate
// Natural identities carry Source+SourceID; the rest fall back to a content hash
type Identity struct {
	Source   string
	SourceID string
	Hash     string
}

// Natural reports whether the source supplied its own id
func (id Identity) Natural() bool { return id.SourceID != "" }

// Derive computes the identity for a candidate.
// When the source gave us an id we trust it; otherwise we hash the canonical
// title, the when key, and the canonical venue. City is not part of the
// hash payload
func Derive(source, sourceID, title, whenKey, venue string) Identity {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID != "" {
		return Identity{Source: source, SourceID: sourceID}
	}

	payload := textnorm.Fold(title) + "|" + whenKey + "|" + textnorm.Fold(venue)
	sum := sha256.Sum256([]byte(payload))
	return Identity{
		Source: source,
		Hash:   hex.EncodeToString(sum[:]),
	}
}
