package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks[len(s.blocks)-1]
}

// RetrieveBlocks returns a copy of the blocks in the chain.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.blocks))
	copy(blocks, s.blocks)

	return blocks
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.PickAll()
}

// RetrieveBalances returns a copy of the current balances.
func (s *State) RetrieveBalances() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sheet.Copy()
}

// RetrieveWatermarks returns a copy of the lowest and highest balance of
// every account since genesis.
func (s *State) RetrieveWatermarks() (low map[string]int64, high map[string]int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.watermarks.Min(), s.watermarks.Max()
}
