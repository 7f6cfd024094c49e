// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents the queue of transactions waiting to be mined. The
// transactions are kept in the order they were accepted, which is the order
// they are recorded in the next block.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the queue and returns the new
// number of transactions in the pool.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}

// PickAll returns a copy of every transaction in the pool in the order they
// were added.
func (mp *Mempool) PickAll() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return append([]database.Tx(nil), mp.pool...)
}

// PickAccount returns the transactions in the pool sent or received by the
// account, in the order they were added.
func (mp *Mempool) PickAccount(account string) []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var trans []database.Tx
	for _, tx := range mp.pool {
		if tx.Sender == account || tx.Recipient == account {
			trans = append(trans, tx)
		}
	}

	return trans
}
