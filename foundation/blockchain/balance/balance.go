// Package balance maintains account balances and the lowest and highest
// balance each account has held.
package balance

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Sheet represents the data representation to maintain account balances.
// Balances are signed since mined transactions are applied without checks
// and can drive an account below zero.
type Sheet struct {
	sheet map[string]int64
	mu    sync.RWMutex
}

// NewSheet constructs a new balance sheet for use, expects a starting
// balance sheet or nil.
func NewSheet(sheet map[string]int64) *Sheet {
	bs := Sheet{
		sheet: make(map[string]int64),
	}

	if sheet != nil {
		bs.Reset(sheet)
	}

	return &bs
}

// Reset takes the specified sheet and resets the balances.
func (bs *Sheet) Reset(sheet map[string]int64) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.sheet = make(map[string]int64)
	for account, value := range sheet {
		bs.sheet[account] = value
	}
}

// Clone makes a copy of the current balance sheet.
func (bs *Sheet) Clone() *Sheet {
	return NewSheet(bs.Copy())
}

// Copy makes a copy of the current balance sheet but returns the raw data.
func (bs *Sheet) Copy() map[string]int64 {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	sheet := make(map[string]int64, len(bs.sheet))
	for account, value := range bs.sheet {
		sheet[account] = value
	}
	return sheet
}

// Balance returns the balance for the account, 0 if the account is unknown.
func (bs *Sheet) Balance(account string) int64 {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	return bs.sheet[account]
}

// ApplyTransaction moves the amount from the sender to the recipient. The
// genesis sender is never debited.
func (bs *Sheet) ApplyTransaction(tx database.Tx) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.apply(tx)
}

// ApplyBlock applies every transaction in the block in order.
func (bs *Sheet) ApplyBlock(block database.Block) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	for _, tx := range block.Transactions() {
		bs.apply(tx)
	}
}

// String implements the fmt.Stringer interface for logging.
func (bs *Sheet) String() string {
	return fmt.Sprint(bs.Copy())
}

func (bs *Sheet) apply(tx database.Tx) {
	if !tx.IsIssuance() {
		bs.sheet[tx.Sender] -= tx.Amount
	}
	bs.sheet[tx.Recipient] += tx.Amount
}

// =============================================================================

// Watermarks tracks the lowest and highest balance observed for each account
// across the history of the chain.
type Watermarks struct {
	min map[string]int64
	max map[string]int64
	mu  sync.RWMutex
}

// NewWatermarks constructs an empty set of watermarks.
func NewWatermarks() *Watermarks {
	return &Watermarks{
		min: make(map[string]int64),
		max: make(map[string]int64),
	}
}

// Observe widens the watermarks of every account to include its balance.
func (w *Watermarks) Observe(balances map[string]int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for account, value := range balances {
		if low, exists := w.min[account]; !exists || value < low {
			w.min[account] = value
		}
		if high, exists := w.max[account]; !exists || value > high {
			w.max[account] = value
		}
	}
}

// Min returns a copy of the lowest balances.
func (w *Watermarks) Min() map[string]int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return copyMap(w.min)
}

// Max returns a copy of the highest balances.
func (w *Watermarks) Max() map[string]int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return copyMap(w.max)
}

// =============================================================================

// Replay recomputes the balances from scratch by applying every transaction
// in blocks 0 through index inclusive.
func Replay(blocks []database.Block, index uint64) (map[string]int64, error) {
	if index >= uint64(len(blocks)) {
		return nil, fmt.Errorf("block %d is beyond the chain tip %d", index, len(blocks)-1)
	}

	sheet := NewSheet(nil)
	for _, block := range blocks[:index+1] {
		sheet.ApplyBlock(block)
	}

	return sheet.Copy(), nil
}

// ReplayWatermarks recomputes the watermarks from scratch. The balances as
// of each block 0 through index are folded into the watermarks, which is how
// they are maintained as blocks are mined.
func ReplayWatermarks(blocks []database.Block, index uint64) (low map[string]int64, high map[string]int64, err error) {
	if index >= uint64(len(blocks)) {
		return nil, nil, fmt.Errorf("block %d is beyond the chain tip %d", index, len(blocks)-1)
	}

	sheet := NewSheet(nil)
	wm := NewWatermarks()
	for _, block := range blocks[:index+1] {
		sheet.ApplyBlock(block)
		wm.Observe(sheet.Copy())
	}

	return wm.Min(), wm.Max(), nil
}

func copyMap(m map[string]int64) map[string]int64 {
	cp := make(map[string]int64, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
