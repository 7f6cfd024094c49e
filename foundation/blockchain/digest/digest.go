// Package digest provides the hashing support used by the merkle tree and
// for hashing blocks.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Size is the number of hex characters in a digest.
const Size = 64

// Strategy represents the hash function used to produce a digest.
type Strategy string

// Set of supported hash strategies.
const (
	SHA256    Strategy = "sha256"
	Keccak256 Strategy = "keccak256"
)

// ParseStrategy converts a configuration string into a Strategy. An empty
// string selects SHA256.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", SHA256:
		return SHA256, nil
	case Keccak256:
		return Keccak256, nil
	}

	return "", fmt.Errorf("unknown hash strategy %q", s)
}

// Sum hashes the data with the strategy and returns the hex encoded digest.
func (s Strategy) Sum(data []byte) string {
	switch s {
	case Keccak256:
		return common.Bytes2Hex(crypto.Keccak256(data))
	default:
		hash := sha256.Sum256(data)
		return common.Bytes2Hex(hash[:])
	}
}

// Hash returns the digest of the canonical form of the value. An empty
// string is returned if the value can't be encoded. The empty string never
// solves a proof of work and never matches a stored hash.
func (s Strategy) Hash(value any) string {
	data, err := Canonical(value)
	if err != nil {
		return ""
	}

	return s.Sum(data)
}

// =============================================================================

// Sum hashes the data using SHA256.
func Sum(data []byte) string {
	return SHA256.Sum(data)
}

// Hash returns the SHA256 digest of the canonical form of the value.
func Hash(value any) string {
	return SHA256.Hash(value)
}

// Canonical encodes the value as JSON with every object's keys sorted. Two
// values with the same logical content produce the same bytes regardless of
// the order their fields were declared in.
func Canonical(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	// Decoding into generic values turns every object into a map, which
	// encoding/json writes out with sorted keys.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}

// IsDigest reports whether the string has the shape of a hex digest.
func IsDigest(s string) bool {
	if len(s) != Size {
		return false
	}

	for _, c := range []byte(s) {
		if !(('0' <= c && c <= '9') || ('a' <= c && c <= 'f')) {
			return false
		}
	}

	return true
}
