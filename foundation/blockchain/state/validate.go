package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ValidateChain walks the chain from the block after genesis and returns the
// first violation found. Each block must carry the hash of its own content,
// link to the hash of the block before it, and solve its proof of work.
func (s *State) ValidateChain() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return validateBlocks(s.blocks, s.evHandler)
}

// IsChainValid reports whether ValidateChain finds no violation.
func (s *State) IsChainValid() bool {
	return s.ValidateChain() == nil
}

// =============================================================================

func validateBlocks(blocks []database.Block, ev EventHandler) error {
	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], ev); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}

	return nil
}
