package state

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// MineNewBlock mines every pending transaction into a new block and appends
// it to the chain. The chain is locked for the duration of the work so at
// most one block is committed per call. Loading the chain or shutting down
// cancels the work with an error matching context.Canceled.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.startMine(cancel); err != nil {
		return database.Block{}, err
	}
	defer s.endMine()

	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	latest := s.blocks[len(s.blocks)-1]
	trans := s.mempool.PickAll()

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d] txs[%d]", len(s.blocks), len(trans))

	block, err := database.POW(ctx, database.POWArgs{
		Number:        uint64(len(s.blocks)),
		PrevBlockHash: latest.Hash,
		Difficulty:    s.difficulty,
		Strategy:      s.strategy,
		Trans:         trans,
		EvHandler:     s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: update local state: blk[%d] hash[%s]", block.Header.Number, block.Hash)

	s.appendBlock(block)
	s.mempool.Truncate()

	return block, nil
}
