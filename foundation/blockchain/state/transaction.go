package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// SubmitTransaction validates the transaction against the current balances
// and adds it to the mempool. Transactions already pending are not taken into
// account, so an account can commit more than it holds across one block.
func (s *State) SubmitTransaction(tx database.Tx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := tx.Validate(); err != nil {
		return err
	}

	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}

	if tx.Sender == tx.Recipient {
		return ErrSelfTransfer
	}

	if held := s.sheet.Balance(tx.Sender); held < tx.Amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientBalance, tx.Sender, held, tx.Amount)
	}

	n := s.mempool.Add(tx)
	s.evHandler("state: SubmitTransaction: tx[%s] added: pending[%d]", tx, n)

	if w := s.registeredWorker(); w != nil {
		w.SignalStartMining()
	}

	return nil
}
