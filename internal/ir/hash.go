package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainStory  = "inkdc/story/v1"
	DomainSource = "inkdc/source/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StoryHash computes the content hash of a decompiled story tree.
// Equal trees produce equal hashes regardless of map iteration order.
func StoryHash(s *Story) (string, error) {
	canonical, err := MarshalCanonical(EncodeStory(s))
	if err != nil {
		return "", fmt.Errorf("StoryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStory, canonical), nil
}

// SourceHash computes the content hash of rendered source text.
func SourceHash(source string) string {
	return hashWithDomain(DomainSource, []byte(source))
}
