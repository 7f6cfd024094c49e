package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func noopEv(v string, args ...any) {}

func mine(t *testing.T, number uint64, prevHash string, difficulty uint16, trans []database.Tx) database.Block {
	t.Helper()

	block, err := database.POW(context.Background(), database.POWArgs{
		Number:        number,
		PrevBlockHash: prevHash,
		Difficulty:    difficulty,
		Strategy:      digest.SHA256,
		Trans:         trans,
		EvHandler:     noopEv,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine block %d: %v", failed, number, err)
	}

	return block
}

// =============================================================================

func TestPOW(t *testing.T) {
	type table struct {
		name       string
		difficulty uint16
		strategy   digest.Strategy
		trans      []database.Tx
	}

	tt := []table{
		{
			name:       "sha256",
			difficulty: 2,
			strategy:   digest.SHA256,
			trans: []database.Tx{
				database.NewTx("Alice", "Bob", 20),
				database.NewTx("Alice", "Eva", 5),
				database.NewTx("Eva", "Bob", 10),
			},
		},
		{
			name:       "keccak256",
			difficulty: 1,
			strategy:   digest.Keccak256,
			trans: []database.Tx{
				database.NewTx("Bob", "Eva", 30),
			},
		},
	}

	t.Log("Given the need to mine blocks that solve the proof of work.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen mining a block with difficulty %d.", testID, tst.difficulty)
				{
					block, err := database.POW(context.Background(), database.POWArgs{
						Number:        1,
						PrevBlockHash: strings.Repeat("0", 64),
						Difficulty:    tst.difficulty,
						Strategy:      tst.strategy,
						Trans:         tst.trans,
						EvHandler:     noopEv,
					})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, testID)

					if !strings.HasPrefix(block.Hash, strings.Repeat("0", int(tst.difficulty))) {
						t.Fatalf("\t%s\tTest %d:\tShould have a hash with %d leading zeros: %s", failed, testID, tst.difficulty, block.Hash)
					}
					t.Logf("\t%s\tTest %d:\tShould have a hash with %d leading zeros.", success, testID, tst.difficulty)

					if hash := block.CalculateHash(); hash != block.Hash {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, hash)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, block.Hash)
						t.Fatalf("\t%s\tTest %d:\tShould reproduce the hash from the stored fields.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reproduce the hash from the stored fields.", success, testID)

					if block.Mode != database.ModeMined {
						t.Fatalf("\t%s\tTest %d:\tShould be marked as mined, got %s.", failed, testID, block.Mode)
					}
					t.Logf("\t%s\tTest %d:\tShould be marked as mined.", success, testID)

					if block.Header.MerkleRoot != block.Trans.MerkleRoot || block.Header.MerkleRoot == "" {
						t.Fatalf("\t%s\tTest %d:\tShould carry the merkle root of the transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould carry the merkle root of the transactions.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestFindNonceCancelled(t *testing.T) {
	t.Log("Given the need to stop a proof of work search.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the context is already cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			p := database.Preimage{Number: 1, PrevBlockHash: "0", Trans: []database.Tx{database.NewTx("a", "b", 1)}}
			_, _, err := database.FindNonce(ctx, p, 64, digest.SHA256, noopEv)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould return the context error, got %v.", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould return the context error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the difficulty is larger than the hash.", testID)
		{
			p := database.Preimage{Number: 1, PrevBlockHash: "0"}
			if _, _, err := database.FindNonce(context.Background(), p, 65, digest.SHA256, noopEv); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the difficulty.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the difficulty.", success, testID)
		}
	}
}

func TestIsHashSolved(t *testing.T) {
	hash := "00ab" + strings.Repeat("f", 60)

	tt := []struct {
		difficulty uint16
		hash       string
		exp        bool
	}{
		{0, hash, true},
		{1, hash, true},
		{2, hash, true},
		{3, hash, false},
		{2, "00ab", false},
		{2, "", false},
	}

	for i, tst := range tt {
		if got := database.IsHashSolved(tst.difficulty, tst.hash); got != tst.exp {
			t.Errorf("[case:%d] error: expected %t got %t", i, tst.exp, got)
		}
	}
}

func TestValidateBlock(t *testing.T) {
	genesis := mine(t, 0, database.GenesisPrevHash, 1, []database.Tx{database.NewTx(database.GenesisSender, "Alice", 100)})
	block := mine(t, 1, genesis.Hash, 1, []database.Tx{database.NewTx("Alice", "Bob", 10)})

	t.Log("Given the need to validate a block against its parent.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the block is untouched.", testID)
		{
			if err := block.ValidateBlock(genesis, noopEv); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould validate: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould validate.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the previous hash is changed.", testID)
		{
			bad := block
			bad.Header.PrevBlockHash = strings.Repeat("0", 64)
			if err := bad.ValidateBlock(genesis, noopEv); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail validation.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fail validation.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the stored hash is changed.", testID)
		{
			bad := block
			bad.Hash = "0" + block.Hash[1:len(block.Hash)-1] + "x"
			if err := bad.ValidateBlock(genesis, noopEv); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail validation.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould fail validation.", success, testID)
		}
	}
}

func TestBlockData(t *testing.T) {
	genesis := mine(t, 0, database.GenesisPrevHash, 1, []database.Tx{
		database.NewTx(database.GenesisSender, "Alice", 100),
		database.NewTx(database.GenesisSender, "Bob", 50),
	})

	t.Log("Given the need to convert blocks to and from storage.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen reconstructing a mined block.", testID)
		{
			block, err := database.ToBlock(database.NewBlockData(genesis), digest.SHA256)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reconstruct the block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to reconstruct the block.", success, testID)

			if block.Mode != database.ModeReconstructed {
				t.Fatalf("\t%s\tTest %d:\tShould be marked as reconstructed, got %s.", failed, testID, block.Mode)
			}
			t.Logf("\t%s\tTest %d:\tShould be marked as reconstructed.", success, testID)

			if block.Hash != genesis.Hash || block.Header != genesis.Header {
				t.Fatalf("\t%s\tTest %d:\tShould keep the stored header and hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the stored header and hash.", success, testID)

			if block.CalculateHash() != genesis.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould recompute the same hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould recompute the same hash.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the stored record is missing its hash.", testID)
		{
			bd := database.NewBlockData(genesis)
			bd.Hash = ""
			if _, err := database.ToBlock(bd, digest.SHA256); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the record.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the record.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a stored transaction is missing its recipient.", testID)
		{
			bd := database.NewBlockData(genesis)
			bd.Trans = []database.Tx{{Sender: "Alice", Amount: 5}}
			if _, err := database.ToBlock(bd, digest.SHA256); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the record.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the record.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen reconstructing a block with no transactions.", testID)
		{
			bd := database.BlockData{Number: 3, PrevBlockHash: "0", Hash: strings.Repeat("0", 64)}
			block, err := database.ToBlock(bd, digest.SHA256)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reconstruct the block: %v", failed, testID, err)
			}
			if block.Header.MerkleRoot != "" || len(block.Transactions()) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have no merkle root.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould have no merkle root.", success, testID)
		}
	}
}
