package database

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// Preimage is the content of a block that is covered by the block hash.
type Preimage struct {
	Number        uint64
	PrevBlockHash string
	Trans         []Tx
	MerkleRoot    string
	Nonce         uint64
}

// preimageJSON is the encoded form of a preimage. A block without
// transactions hashes its merkle root as null.
type preimageJSON struct {
	Number        uint64  `json:"index"`
	PrevBlockHash string  `json:"previous_hash"`
	Trans         []Tx    `json:"transactions"`
	MerkleRoot    *string `json:"merkle_root"`
	Nonce         uint64  `json:"nonce"`
}

// Canonical returns the canonical bytes that are hashed for the preimage.
func (p Preimage) Canonical() ([]byte, error) {
	pj := preimageJSON{
		Number:        p.Number,
		PrevBlockHash: p.PrevBlockHash,
		Trans:         p.Trans,
		Nonce:         p.Nonce,
	}
	if pj.Trans == nil {
		pj.Trans = []Tx{}
	}
	if p.MerkleRoot != "" {
		root := p.MerkleRoot
		pj.MerkleRoot = &root
	}

	return digest.Canonical(pj)
}

// Hash returns the digest of the preimage.
func (p Preimage) Hash(strategy digest.Strategy) string {
	data, err := p.Canonical()
	if err != nil {
		return ""
	}

	return strategy.Sum(data)
}

// =============================================================================

// FindNonce searches for the nonce, starting at 0, that makes the hash of
// the preimage begin with difficulty 0's. The nonce in the preimage is
// ignored. The search has no upper bound and only stops if the context is
// cancelled. The expected number of attempts is 16^difficulty.
func FindNonce(ctx context.Context, p Preimage, difficulty uint16, strategy digest.Strategy, ev func(v string, args ...any)) (uint64, string, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if int(difficulty) > digest.Size {
		return 0, "", errors.New("difficulty is larger than the hash")
	}

	if err := ctx.Err(); err != nil {
		return 0, "", err
	}

	// The canonical form sorts keys, so the nonce sits between the merkle
	// root and the previous hash. Everything around it stays constant while
	// searching, which lets the loop splice in each candidate nonce.
	p.Nonce = 0
	data, err := p.Canonical()
	if err != nil {
		return 0, "", err
	}

	const key = `"nonce":`
	idx := bytes.Index(data, []byte(key+"0"))
	if idx < 0 {
		return 0, "", errors.New("nonce missing from block preimage")
	}
	prefix := data[:idx+len(key)]
	suffix := data[idx+len(key)+1:]

	buf := make([]byte, 0, len(data)+20)

	var attempts uint64
	for nonce := uint64(0); ; nonce++ {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: FindNonce: MINING: attempts[%d]", attempts)

			if ctx.Err() != nil {
				ev("database: FindNonce: MINING: CANCELLED")
				return 0, "", ctx.Err()
			}
		}

		buf = append(buf[:0], prefix...)
		buf = strconv.AppendUint(buf, nonce, 10)
		buf = append(buf, suffix...)

		hash := strategy.Sum(buf)
		if !IsHashSolved(difficulty, hash) {
			continue
		}

		ev("database: FindNonce: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", p.PrevBlockHash, hash)
		ev("database: FindNonce: MINING: attempts[%d]", attempts)

		return nonce, hash, nil
	}
}

// IsHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint16, hash string) bool {
	if len(hash) != digest.Size || int(difficulty) > digest.Size {
		return false
	}

	for i := 0; i < int(difficulty); i++ {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}
