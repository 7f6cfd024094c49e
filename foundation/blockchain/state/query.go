package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// QueryBalances recomputes the balances of every account as of the
// specified block by replaying the chain from genesis.
func (s *State) QueryBalances(index uint64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index >= uint64(len(s.blocks)) {
		return nil, fmt.Errorf("%w: %d", ErrBlockNotFound, index)
	}

	return balance.Replay(s.blocks, index)
}

// QueryWatermarks recomputes the lowest and highest balance of every account
// as of the specified block.
func (s *State) QueryWatermarks(index uint64) (low map[string]int64, high map[string]int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index >= uint64(len(s.blocks)) {
		return nil, nil, fmt.Errorf("%w: %d", ErrBlockNotFound, index)
	}

	return balance.ReplayWatermarks(s.blocks, index)
}

// QueryBlock returns the block at the specified index.
func (s *State) QueryBlock(index uint64) (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index >= uint64(len(s.blocks)) {
		return database.Block{}, fmt.Errorf("%w: %d", ErrBlockNotFound, index)
	}

	return s.blocks[index], nil
}

// QueryBlocksByAccount returns the blocks holding a transaction sent or
// received by the account. If the account is empty, all blocks are returned.
func (s *State) QueryBlocksByAccount(account string) []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []database.Block
	for _, block := range s.blocks {
		for _, tx := range block.Transactions() {
			if account == "" || tx.Sender == account || tx.Recipient == account {
				out = append(out, block)
				break
			}
		}
	}

	return out
}
