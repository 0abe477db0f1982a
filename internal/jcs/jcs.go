// Package jcs computes RFC 8785 canonical forms and digests of diagram documents.
package jcs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/tfdiagram/tfdiagram/internal/diagram"
)

// CanonicalizeJSON returns the RFC 8785 (JCS) canonical form of JSON input.
func CanonicalizeJSON(input []byte) ([]byte, error) {
	return jcs.Transform(input)
}

// DigestJCS canonicalizes JSON (RFC 8785) and returns a sha256 hex digest.
func DigestJCS(input []byte) (string, error) {
	canonical, err := CanonicalizeJSON(input)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Digest returns the sha256 hex digest of the canonical JSON form of d.
// Documents that round-trip to the same record share a digest.
func Digest(d *diagram.Document) (string, error) {
	raw, err := json.Marshal(d.Record())
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return DigestJCS(raw)
}
