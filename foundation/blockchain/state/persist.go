package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// SaveChain replaces the content of the storage with the blocks of the chain.
func (s *State) SaveChain() error {
	if s.storage == nil {
		return ErrNoStorage
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.evHandler("state: SaveChain: started: blocks[%d]", len(s.blocks))
	defer s.evHandler("state: SaveChain: completed")

	if err := s.storage.Reset(); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}

	for _, block := range s.blocks {
		if err := s.storage.Write(database.NewBlockData(block)); err != nil {
			return fmt.Errorf("write block %d: %w", block.Header.Number, err)
		}
	}

	return nil
}

// LoadChain replaces the chain with the blocks held by the storage. The
// blocks are reconstructed as stored, not mined or validated. Balances and
// watermarks are recomputed and the mempool is cleared. New blocks are mined
// at the difficulty of the loaded tip. An empty storage leaves the chain
// unchanged.
func (s *State) LoadChain() error {
	if s.storage == nil {
		return ErrNoStorage
	}

	s.evHandler("state: LoadChain: started")
	defer s.evHandler("state: LoadChain: completed")

	// A block mined now would be replaced by the load. The cancel is sent
	// before waiting on the chain lock the mine holds.
	release := s.interruptMining()
	defer release()

	if w := s.registeredWorker(); w != nil {
		w.SignalCancelMining()
	}

	records, err := database.ReadAll(s.storage)
	if err != nil {
		return fmt.Errorf("read storage: %w", err)
	}

	if len(records) == 0 {
		s.evHandler("state: LoadChain: storage is empty: chain unchanged")
		return nil
	}

	blocks := make([]database.Block, len(records))
	for i, blockData := range records {
		block, err := database.ToBlock(blockData, s.strategy)
		if err != nil {
			return err
		}
		blocks[i] = block
	}

	sheet := balance.NewSheet(nil)
	watermarks := balance.NewWatermarks()
	for _, block := range blocks {
		sheet.ApplyBlock(block)
		watermarks.Observe(sheet.Copy())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tip := blocks[len(blocks)-1]

	s.blocks = blocks
	s.sheet = sheet
	s.watermarks = watermarks
	s.difficulty = tip.Header.Difficulty
	s.mempool.Truncate()

	s.evHandler("state: LoadChain: blocks[%d] tip[%s] difficulty[%d]", len(blocks), tip.Hash, s.difficulty)

	return nil
}
