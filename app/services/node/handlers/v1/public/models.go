package public

import (
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

type newTx struct {
	Sender    string `json:"sender" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Amount    int64  `json:"amount"`
}

func (ntx newTx) toTx() database.Tx {
	return database.NewTx(ntx.Sender, ntx.Recipient, ntx.Amount)
}

type tx struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
}

func toTxs(trans []database.Tx) []tx {
	out := make([]tx, len(trans))
	for i, tran := range trans {
		out[i] = tx{
			Sender:    tran.Sender,
			Recipient: tran.Recipient,
			Amount:    tran.Amount,
		}
	}
	return out
}

type block struct {
	Number        uint64 `json:"index"`
	PrevBlockHash string `json:"previous_hash"`
	MerkleRoot    string `json:"merkle_root,omitempty"`
	Difficulty    uint16 `json:"difficulty"`
	Nonce         uint64 `json:"nonce"`
	Hash          string `json:"hash"`
	Mode          string `json:"mode"`
	Transactions  []tx   `json:"transactions"`
}

func toBlock(blk database.Block) block {
	return block{
		Number:        blk.Header.Number,
		PrevBlockHash: blk.Header.PrevBlockHash,
		MerkleRoot:    blk.Header.MerkleRoot,
		Difficulty:    blk.Header.Difficulty,
		Nonce:         blk.Header.Nonce,
		Hash:          blk.Hash,
		Mode:          blk.Mode.String(),
		Transactions:  toTxs(blk.Transactions()),
	}
}

func toBlocks(blks []database.Block) []block {
	out := make([]block, len(blks))
	for i, blk := range blks {
		out[i] = toBlock(blk)
	}
	return out
}

type balance struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
	Min     int64  `json:"min"`
	Max     int64  `json:"max"`
}

type balances struct {
	Index       uint64    `json:"index"`
	BlockHash   string    `json:"block_hash"`
	Uncommitted int       `json:"uncommitted"`
	Balances    []balance `json:"balances"`
}

func toBalances(current map[string]int64, low map[string]int64, high map[string]int64) []balance {
	out := make([]balance, 0, len(current))
	for account, value := range current {
		out = append(out, balance{
			Account: account,
			Balance: value,
			Min:     low[account],
			Max:     high[account],
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })

	return out
}

type validation struct {
	Valid  bool   `json:"valid"`
	Blocks int    `json:"blocks"`
	Error  string `json:"error,omitempty"`
}
