package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
)

// printBalances renders the balance of every account, and its watermarks
// when they are provided.
func printBalances(index uint64, current map[string]int64, low map[string]int64, high map[string]int64) error {
	accounts := make([]string, 0, len(current))
	for account := range current {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	header := []string{"Account", "Balance"}
	if low != nil {
		header = append(header, "Min", "Max")
	}

	data := pterm.TableData{header}
	for _, account := range accounts {
		row := []string{account, strconv.FormatInt(current[account], 10)}
		if low != nil {
			row = append(row, strconv.FormatInt(low[account], 10), strconv.FormatInt(high[account], 10))
		}
		data = append(data, row)
	}

	pterm.DefaultSection.Printfln("Balances as of block %d", index)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// printBlock renders the header and transactions of a block.
func printBlock(block database.Block) error {
	root := block.Header.MerkleRoot
	if root == "" {
		root = "-"
	}

	pterm.DefaultSection.Printfln("Block %d", block.Header.Number)
	pterm.Printfln("Hash:          %s", block.Hash)
	pterm.Printfln("Previous Hash: %s", block.Header.PrevBlockHash)
	pterm.Printfln("Merkle Root:   %s", root)
	pterm.Printfln("Nonce:         %d", block.Header.Nonce)
	pterm.Printfln("Difficulty:    %d", block.Header.Difficulty)
	pterm.Printfln("Mode:          %s", block.Mode)

	data := pterm.TableData{{"Sender", "Recipient", "Amount"}}
	for _, tx := range block.Transactions() {
		data = append(data, []string{tx.Sender, tx.Recipient, fmt.Sprint(tx.Amount)})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// printValidation reports whether the chain is intact.
func printValidation(err error) {
	if err != nil {
		pterm.Error.Printfln("Is chain valid? false: %s", err)
		return
	}
	pterm.Success.Println("Is chain valid? true")
}
