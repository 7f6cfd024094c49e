// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// Set of error variables for the state of the chain.
var (
	ErrInvalidAmount       = errors.New("transaction amount must be positive")
	ErrSelfTransfer        = errors.New("sender and recipient must be different")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoTransactions      = errors.New("no transactions in mempool")
	ErrBlockNotFound       = errors.New("block not found")
	ErrNoStorage           = errors.New("no storage configured")
)

// errMiningInterrupted is returned by a mine refused while the chain is being
// replaced. It matches context.Canceled.
var errMiningInterrupted = fmt.Errorf("mining interrupted: %w", context.Canceled)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the blockchain.
// A zero Genesis uses genesis.Default and a zero difficulty uses
// genesis.DefaultDifficulty. Storage is only required to save and load the
// chain.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Storage
	EvHandler EventHandler
}

// State manages the blockchain in memory.
type State struct {
	evHandler  EventHandler
	genesis    genesis.Genesis
	difficulty uint16
	strategy   digest.Strategy
	storage    database.Storage

	mu         sync.RWMutex
	blocks     []database.Block
	mempool    *mempool.Mempool
	sheet      *balance.Sheet
	watermarks *balance.Watermarks

	// The worker and the mine in progress are guarded on their own so a
	// mine holding mu can still be cancelled.
	workerMu   sync.RWMutex
	worker     Worker
	mineMu     sync.Mutex
	mineCancel context.CancelFunc
	interrupts int
}

// New constructs a new blockchain and mines the genesis block.
func New(ctx context.Context, cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	gen := cfg.Genesis
	if len(gen.Grants) == 0 {
		gen = genesis.Default()
	}
	if gen.Difficulty == 0 {
		gen.Difficulty = genesis.DefaultDifficulty
	}

	if err := gen.Validate(); err != nil {
		return nil, err
	}

	strategy, err := digest.ParseStrategy(gen.HashStrategy)
	if err != nil {
		return nil, err
	}

	s := State{
		evHandler:  ev,
		genesis:    gen,
		difficulty: gen.Difficulty,
		strategy:   strategy,
		storage:    cfg.Storage,

		mempool:    mempool.New(),
		sheet:      balance.NewSheet(nil),
		watermarks: balance.NewWatermarks(),
	}

	ev("state: New: MINING: genesis block: difficulty[%d] strategy[%s]", s.difficulty, s.strategy)

	block, err := database.POW(ctx, database.POWArgs{
		Number:        0,
		PrevBlockHash: database.GenesisPrevHash,
		Difficulty:    s.difficulty,
		Strategy:      s.strategy,
		Trans:         gen.Transactions(),
		EvHandler:     ev,
	})
	if err != nil {
		return nil, err
	}

	s.appendBlock(block)

	return &s, nil
}

// RegisterWorker attaches a worker that is signaled to mine every time a
// transaction is accepted.
func (s *State) RegisterWorker(w Worker) {
	s.workerMu.Lock()
	defer s.workerMu.Unlock()

	s.worker = w
}

// registeredWorker returns the registered worker or nil.
func (s *State) registeredWorker() Worker {
	s.workerMu.RLock()
	defer s.workerMu.RUnlock()

	return s.worker
}

// Shutdown cleanly brings the chain down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	// Stop all blockchain writing activity. A mine in progress is cancelled
	// and no new mine is started.
	s.interruptMining()
	if w := s.registeredWorker(); w != nil {
		w.Shutdown()
	}

	if s.storage == nil {
		return nil
	}

	return s.storage.Close()
}

// =============================================================================

// startMine registers the cancel function of a mine holding the chain lock.
// It fails while the chain is being replaced or shut down.
func (s *State) startMine(cancel context.CancelFunc) error {
	s.mineMu.Lock()
	defer s.mineMu.Unlock()

	if s.interrupts > 0 {
		return errMiningInterrupted
	}
	s.mineCancel = cancel

	return nil
}

// endMine clears the cancel function registered by startMine.
func (s *State) endMine() {
	s.mineMu.Lock()
	defer s.mineMu.Unlock()

	s.mineCancel = nil
}

// interruptMining cancels the mine in progress, if any, and refuses to start
// new ones until the returned function is called.
func (s *State) interruptMining() (release func()) {
	s.mineMu.Lock()
	defer s.mineMu.Unlock()

	s.interrupts++
	if s.mineCancel != nil {
		s.mineCancel()
	}

	return func() {
		s.mineMu.Lock()
		defer s.mineMu.Unlock()

		s.interrupts--
	}
}

// appendBlock adds the block to the chain and folds its transactions into
// the balances and watermarks. The caller must hold the lock or own the
// value exclusively.
func (s *State) appendBlock(block database.Block) {
	s.blocks = append(s.blocks, block)
	s.sheet.ApplyBlock(block)
	s.watermarks.Observe(s.sheet.Copy())
}
