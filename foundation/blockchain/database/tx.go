package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// GenesisSender is the sender used for transactions that issue new value.
// These transactions credit the recipient without debiting anyone.
const GenesisSender = "genesis"

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	Sender    string `json:"sender" validate:"required"`    // Account sending the value.
	Recipient string `json:"recipient" validate:"required"` // Account receiving the value.
	Amount    int64  `json:"amount"`                        // Value moved between the accounts.
}

// NewTx constructs a new transaction.
func NewTx(sender string, recipient string, amount int64) Tx {
	return Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
}

// IsIssuance reports whether the transaction creates new value.
func (tx Tx) IsIssuance() bool {
	return tx.Sender == GenesisSender
}

// Validate checks the transaction names both parties.
func (tx Tx) Validate() error {
	return validate.Struct(tx)
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction.
func (tx Tx) Hash(strategy digest.Strategy) (string, error) {
	hash := strategy.Hash(tx)
	if hash == "" {
		return "", errors.New("unable to hash transaction")
	}

	return hash, nil
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx == otherTx
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.Sender, tx.Recipient, tx.Amount)
}
