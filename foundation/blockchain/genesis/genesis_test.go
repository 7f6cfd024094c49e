package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestLoad(t *testing.T) {
	type table struct {
		name       string
		file       string
		content    string
		difficulty uint16
		exp        []database.Tx
		fail       bool
	}

	tt := []table{
		{
			name:       "json",
			file:       "genesis.json",
			content:    `{"difficulty":3,"grants":[{"account":"Ann","amount":10},{"account":"Ben","amount":20}]}`,
			difficulty: 3,
			exp:        []database.Tx{database.NewTx("genesis", "Ann", 10), database.NewTx("genesis", "Ben", 20)},
		},
		{
			name:       "yaml",
			file:       "genesis.yaml",
			content:    "difficulty: 3\ngrants:\n  - account: Ann\n    amount: 10\n",
			difficulty: 3,
			exp:        []database.Tx{database.NewTx("genesis", "Ann", 10)},
		},
		{
			name:       "default-difficulty",
			file:       "genesis.json",
			content:    `{"grants":[{"account":"Alice","amount":100}]}`,
			difficulty: genesis.DefaultDifficulty,
			exp:        []database.Tx{database.NewTx("genesis", "Alice", 100)},
		},
		{
			name:       "yaml-default-difficulty",
			file:       "genesis.yml",
			content:    "grants:\n  - account: Alice\n    amount: 100\n",
			difficulty: genesis.DefaultDifficulty,
			exp:        []database.Tx{database.NewTx("genesis", "Alice", 100)},
		},
		{
			name:    "negative",
			file:    "genesis.json",
			content: `{"grants":[{"account":"Ann","amount":-1}]}`,
			fail:    true,
		},
		{
			name:    "empty",
			file:    "genesis.yml",
			content: "difficulty: 2\n",
			fail:    true,
		},
	}

	t.Log("Given the need to load a genesis file.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen loading a %s genesis file.", testID, tst.name)
				{
					path := filepath.Join(t.TempDir(), tst.file)
					if err := os.WriteFile(path, []byte(tst.content), 0600); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to write the file: %v", failed, testID, err)
					}

					gen, err := genesis.Load(path)
					if tst.fail {
						if err == nil {
							t.Fatalf("\t%s\tTest %d:\tShould reject the genesis file.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould reject the genesis file.", success, testID)
						return
					}
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to load the genesis file: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to load the genesis file.", success, testID)

					if gen.Difficulty != tst.difficulty {
						t.Fatalf("\t%s\tTest %d:\tShould have difficulty %d, got %d.", failed, testID, tst.difficulty, gen.Difficulty)
					}
					t.Logf("\t%s\tTest %d:\tShould read the difficulty.", success, testID)

					trans := gen.Transactions()
					if len(trans) != len(tst.exp) {
						t.Fatalf("\t%s\tTest %d:\tShould have %d transactions, got %d.", failed, testID, len(tst.exp), len(trans))
					}
					for i := range trans {
						if trans[i] != tst.exp[i] {
							t.Fatalf("\t%s\tTest %d:\tShould have transaction %v, got %v.", failed, testID, tst.exp[i], trans[i])
						}
					}
					t.Logf("\t%s\tTest %d:\tShould issue the grants in order.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestDefault(t *testing.T) {
	gen := genesis.Default()

	if err := gen.Validate(); err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}

	exp := map[string]int64{"Alice": 100, "Bob": 50, "Eva": 70}
	for _, tx := range gen.Transactions() {
		if !tx.IsIssuance() {
			t.Errorf("error: expected an issuance transaction, got %v", tx)
		}
		if exp[tx.Recipient] != tx.Amount {
			t.Errorf("error: expected %s to receive %d, got %d", tx.Recipient, exp[tx.Recipient], tx.Amount)
		}
	}
}
