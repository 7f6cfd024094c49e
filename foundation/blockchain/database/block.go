package database

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// Mode identifies how a block came to hold its hash.
type Mode int

// Set of construction modes for a block.
const (
	ModeMined         Mode = iota + 1 // The hash was found by proof of work.
	ModeReconstructed                 // The nonce and hash were taken from storage.
)

// String implements the fmt.Stringer interface.
func (m Mode) String() string {
	switch m {
	case ModeMined:
		return "mined"
	case ModeReconstructed:
		return "reconstructed"
	}
	return "unknown"
}

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64 `json:"index"`         // Position of the block in the chain, 0 for genesis.
	PrevBlockHash string `json:"previous_hash"` // Hash of the previous block in the chain.
	MerkleRoot    string `json:"merkle_root"`   // Merkle root of the transactions, empty with no transactions.
	Difficulty    uint16 `json:"difficulty"`    // Number of leading 0's needed to solve the hash solution.
	Nonce         uint64 `json:"nonce"`         // Value identified to solve the hash solution.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  *merkle.Tree[Tx]
	Hash   string
	Mode   Mode
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Number        uint64
	PrevBlockHash string
	Difficulty    uint16
	Strategy      digest.Strategy
	Trans         []Tx
	EvHandler     func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. The search only stops early if the
// context is cancelled.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	// Construct a merkle tree from the transaction for this block. The root
	// of this tree will be part of the block to be mined.
	tree, err := merkle.NewTree(args.Trans, merkle.WithHashStrategy[Tx](args.Strategy))
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: BlockHeader{
			Number:        args.Number,
			PrevBlockHash: args.PrevBlockHash,
			MerkleRoot:    tree.MerkleRoot,
			Difficulty:    args.Difficulty,
			Nonce:         0,
		},
		Trans: tree,
	}

	ev("database: POW: MINING: blk[%d]: started", nb.Header.Number)
	defer ev("database: POW: MINING: blk[%d]: completed", nb.Header.Number)

	for _, tx := range tree.Values() {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	nonce, hash, err := FindNonce(ctx, nb.Preimage(), args.Difficulty, tree.Strategy(), ev)
	if err != nil {
		return Block{}, err
	}

	nb.Header.Nonce = nonce
	nb.Hash = hash
	nb.Mode = ModeMined

	return nb, nil
}

// Strategy returns the hash strategy the block was constructed with.
func (b Block) Strategy() digest.Strategy {
	if b.Trans == nil {
		return digest.SHA256
	}
	return b.Trans.Strategy()
}

// Transactions returns the transactions of the block in order.
func (b Block) Transactions() []Tx {
	if b.Trans == nil {
		return nil
	}
	return b.Trans.Values()
}

// Preimage returns the content of the block covered by its hash.
func (b Block) Preimage() Preimage {
	return Preimage{
		Number:        b.Header.Number,
		PrevBlockHash: b.Header.PrevBlockHash,
		Trans:         b.Transactions(),
		MerkleRoot:    b.Header.MerkleRoot,
		Nonce:         b.Header.Nonce,
	}
}

// CalculateHash recomputes the hash of the block from its stored fields.
// The difficulty is not part of the hash.
func (b Block) CalculateHash() string {
	return b.Preimage().Hash(b.Strategy())
}

// ValidateBlock takes a block and validates it to be the next block after
// the previous block.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash matches the block content", b.Header.Number)

	if hash := b.CalculateHash(); b.Hash != hash {
		return fmt.Errorf("block hash doesn't match the block content, got %s, exp %s", b.Hash, hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.Header.PrevBlockHash, previousBlock.Hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	if nextNumber := previousBlock.Header.Number + 1; b.Header.Number != nextNumber {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Header.Number, nextNumber)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	if !IsHashSolved(b.Header.Difficulty, b.Hash) {
		return fmt.Errorf("%s invalid block hash for difficulty %d", b.Hash, b.Header.Difficulty)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: merkle root does match transactions", b.Header.Number)

	if err := b.Trans.Verify(); err != nil {
		return err
	}

	if b.Header.MerkleRoot != b.Trans.MerkleRoot {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", b.Header.MerkleRoot, b.Trans.MerkleRoot)
	}

	return nil
}

// =============================================================================

// BlockData represents what is written to storage. The field order is the
// order the fields are persisted in.
type BlockData struct {
	Number        uint64 `json:"index"`
	PrevBlockHash string `json:"previous_hash" validate:"required"`
	Trans         []Tx   `json:"transactions" validate:"dive"`
	Difficulty    uint16 `json:"difficulty"`
	Nonce         uint64 `json:"nonce"`
	Hash          string `json:"hash" validate:"required"`
	MerkleRoot    string `json:"merkle_root,omitempty"`
}

// NewBlockData constructs the value to write to storage.
func NewBlockData(block Block) BlockData {
	return BlockData{
		Number:        block.Header.Number,
		PrevBlockHash: block.Header.PrevBlockHash,
		Trans:         block.Transactions(),
		Difficulty:    block.Header.Difficulty,
		Nonce:         block.Header.Nonce,
		Hash:          block.Hash,
		MerkleRoot:    block.Header.MerkleRoot,
	}
}

// ToBlock converts stored block data into a Block without mining it again.
// The nonce, hash, and merkle root are taken as stored; validating them is
// left to the caller.
func ToBlock(blockData BlockData, strategy digest.Strategy) (Block, error) {
	if err := blockData.Validate(); err != nil {
		return Block{}, fmt.Errorf("block %d: %w", blockData.Number, err)
	}

	tree, err := merkle.NewTree(blockData.Trans, merkle.WithHashStrategy[Tx](strategy))
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: BlockHeader{
			Number:        blockData.Number,
			PrevBlockHash: blockData.PrevBlockHash,
			MerkleRoot:    blockData.MerkleRoot,
			Difficulty:    blockData.Difficulty,
			Nonce:         blockData.Nonce,
		},
		Trans: tree,
		Hash:  blockData.Hash,
		Mode:  ModeReconstructed,
	}

	return nb, nil
}
