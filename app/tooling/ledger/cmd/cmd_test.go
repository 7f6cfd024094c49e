package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/pterm/pterm"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// execute runs the ledger with the arguments, starting from the flag
// defaults every time.
func execute(args ...string) error {
	balancesIndex = -1
	blocksAccount = ""
	verbose = false

	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func readChain(t *testing.T, path string) []database.BlockData {
	t.Helper()

	strg, err := storage.Open(storage.KindDisk, path)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the chain file: %v", failed, err)
	}
	defer strg.Close()

	records, err := database.ReadAll(strg)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to read the chain file: %v", failed, err)
	}

	return records
}

// =============================================================================

func TestLedger(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)

	dir := t.TempDir()
	chainPath := filepath.Join(dir, "data.json")
	genesisPath := filepath.Join(dir, "genesis.json")

	gen := `{"difficulty":1,"grants":[{"account":"Alice","amount":100},{"account":"Bob","amount":50},{"account":"Eva","amount":70}]}`
	if err := os.WriteFile(genesisPath, []byte(gen), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the genesis file: %v", failed, err)
	}

	common := []string{"--store", storage.KindDisk, "--path", chainPath, "--genesis", genesisPath}

	t.Log("Given the need to drive the ledger from the command line.")
	{
		t.Logf("\tTest 0:\tWhen running the demo.")
		{
			if err := execute(append([]string{"demo"}, common...)...); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould run the demo: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould run the demo.", success)

			records := readChain(t, chainPath)
			if len(records) != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould save 3 blocks, got %d.", failed, len(records))
			}
			for i, bd := range records[1:] {
				if len(bd.Trans) != 3 {
					t.Fatalf("\t%s\tTest 0:\tShould save 3 transactions in block %d, got %d.", failed, i+1, len(bd.Trans))
				}
			}
			t.Logf("\t%s\tTest 0:\tShould save the genesis and two mined blocks.", success)
		}

		tt := []struct {
			name string
			args []string
			fail bool
		}{
			{name: "balances-latest", args: []string{"balances"}},
			{name: "balances-block", args: []string{"balances", "--block", "1"}},
			{name: "balances-past-tip", args: []string{"balances", "--block", "9"}, fail: true},
			{name: "blocks", args: []string{"blocks"}},
			{name: "blocks-account", args: []string{"blocks", "--account", "Eva"}},
			{name: "validate", args: []string{"validate"}},
			{name: "unknown-store", args: []string{"validate", "--store", "tape"}, fail: true},
		}

		for i, tst := range tt {
			testID := i + 1
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen running %v.", testID, tst.args)
				{
					err := execute(append(append([]string{}, tst.args[:1]...), append(common, tst.args[1:]...)...)...)
					if tst.fail {
						if err == nil {
							t.Fatalf("\t%s\tTest %d:\tShould fail.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould fail.", success, testID)
						return
					}
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould succeed: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould succeed.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}

		testID := len(tt) + 1
		t.Logf("\tTest %d:\tWhen the chain file has been tampered with.", testID)
		{
			records := readChain(t, chainPath)
			records[1].Trans[0].Amount = 2000

			data, err := json.Marshal(records)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to encode the chain: %v", failed, testID, err)
			}
			if err := os.WriteFile(chainPath, data, 0600); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to write the chain: %v", failed, testID, err)
			}

			if err := execute(append([]string{"validate"}, common...)...); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould report an invalid chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould report an invalid chain.", success, testID)
		}
	}
}
