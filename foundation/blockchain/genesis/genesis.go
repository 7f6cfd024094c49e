// Package genesis maintains access to the genesis information.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"gopkg.in/yaml.v3"
)

// DefaultDifficulty is the number of leading 0's a block hash needs when
// nothing else is configured.
const DefaultDifficulty = 4

// Grant represents value issued to an account by the genesis block.
type Grant struct {
	Account string `json:"account" yaml:"account"`
	Amount  int64  `json:"amount" yaml:"amount"`
}

// Genesis represents the genesis information.
type Genesis struct {
	Difficulty   uint16  `json:"difficulty" yaml:"difficulty"`       // How difficult it needs to be to solve the work problem, 0 selects the default.
	HashStrategy string  `json:"hash_strategy" yaml:"hash_strategy"` // Hash function used for digests.
	Grants       []Grant `json:"grants" yaml:"grants"`               // Ordered starting balances.
}

// Default returns the genesis used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Difficulty: DefaultDifficulty,
		Grants: []Grant{
			{Account: "Alice", Amount: 100},
			{Account: "Bob", Amount: 50},
			{Account: "Eva", Amount: 70},
		},
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Files with a .yaml or .yml
// extension are decoded as YAML, everything else as JSON. A file without a
// difficulty gets DefaultDifficulty.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Genesis{
		Difficulty: DefaultDifficulty,
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &genesis)
	default:
		err = json.Unmarshal(content, &genesis)
	}
	if err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis %s: %w", path, err)
	}

	if genesis.Difficulty == 0 {
		genesis.Difficulty = DefaultDifficulty
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis grants are usable.
func (g Genesis) Validate() error {
	if len(g.Grants) == 0 {
		return errors.New("genesis has no grants")
	}

	for _, grant := range g.Grants {
		if grant.Account == "" || grant.Account == database.GenesisSender {
			return fmt.Errorf("invalid genesis account %q", grant.Account)
		}
		if grant.Amount <= 0 {
			return fmt.Errorf("invalid genesis amount %d for %s", grant.Amount, grant.Account)
		}
	}

	return nil
}

// Transactions returns the issuance transactions recorded in the genesis
// block, in grant order.
func (g Genesis) Transactions() []database.Tx {
	trans := make([]database.Tx, len(g.Grants))
	for i, grant := range g.Grants {
		trans[i] = database.NewTx(database.GenesisSender, grant.Account, grant.Amount)
	}

	return trans
}
