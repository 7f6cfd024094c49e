package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// countingWorker records the signals it receives from the state.
type countingWorker struct {
	cancels   atomic.Int32
	shutdowns atomic.Int32
}

func (w *countingWorker) Shutdown()           { w.shutdowns.Add(1) }
func (w *countingWorker) SignalStartMining()  {}
func (w *countingWorker) SignalCancelMining() { w.cancels.Add(1) }

// longMine starts a mine that can't finish within the test and returns once
// the proof of work has begun, with the channel the mine's error arrives on.
func longMine(t *testing.T) (*State, *countingWorker, <-chan error) {
	t.Helper()

	started := make(chan struct{})
	var once sync.Once

	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := New(context.Background(), Config{
		Genesis: gen,
		Storage: mustMemory(t),
		EvHandler: func(v string, args ...any) {
			if strings.HasPrefix(v, "state: MineNewBlock: MINING: perform POW") {
				once.Do(func() { close(started) })
			}
		},
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the chain: %v", failed, err)
	}

	if err := st.SaveChain(); err != nil {
		t.Fatalf("\t%s\tShould be able to save the chain: %v", failed, err)
	}

	w := countingWorker{}
	st.RegisterWorker(&w)

	if err := st.SubmitTransaction(database.NewTx("Alice", "Bob", 10)); err != nil {
		t.Fatalf("\t%s\tShould be able to submit: %v", failed, err)
	}

	// Nothing else runs yet, so the difficulty can be raised in place.
	st.difficulty = 16

	mined := make(chan error, 1)
	go func() {
		_, err := st.MineNewBlock(context.Background())
		mined <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("\t%s\tShould start mining.", failed)
	}

	return st, &w, mined
}

func mustMemory(t *testing.T) *memory.Memory {
	t.Helper()

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the storage: %v", failed, err)
	}

	return strg
}

// within runs fn and reports whether it returned before the timeout.
func within(timeout time.Duration, fn func()) bool {
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// =============================================================================

func TestInterruptMining(t *testing.T) {
	t.Log("Given a block is being mined while the chain is replaced or stopped.")
	{
		t.Logf("\tTest 0:\tWhen the chain is loaded during a mine.")
		{
			st, w, mined := longMine(t)

			var loadErr error
			if !within(5*time.Second, func() { loadErr = st.LoadChain() }) {
				t.Fatalf("\t%s\tTest 0:\tShould load without waiting for the mine.", failed)
			}
			if loadErr != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the chain: %v", failed, loadErr)
			}
			t.Logf("\t%s\tTest 0:\tShould load without waiting for the mine.", success)

			if err := <-mined; !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest 0:\tShould cancel the mine, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould cancel the mine.", success)

			if w.cancels.Load() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould signal the worker to cancel, got %d.", failed, w.cancels.Load())
			}
			t.Logf("\t%s\tTest 0:\tShould signal the worker to cancel.", success)

			if n := len(st.RetrieveBlocks()); n != 1 || len(st.RetrieveMempool()) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould hold the loaded chain only, got %d blocks.", failed, n)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the loaded chain only.", success)

			if err := st.SubmitTransaction(database.NewTx("Alice", "Bob", 10)); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to submit after the load: %v", failed, err)
			}
			if _, err := st.MineNewBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould mine again after the load: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould mine again after the load.", success)
		}

		t.Logf("\tTest 1:\tWhen the chain is shut down during a mine.")
		{
			st, w, mined := longMine(t)

			if !within(5*time.Second, func() { st.Shutdown() }) {
				t.Fatalf("\t%s\tTest 1:\tShould shut down without waiting for the mine.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould shut down without waiting for the mine.", success)

			if err := <-mined; !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest 1:\tShould cancel the mine, got %v.", failed, err)
			}
			if w.shutdowns.Load() != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould shut the worker down, got %d.", failed, w.shutdowns.Load())
			}
			t.Logf("\t%s\tTest 1:\tShould cancel the mine and stop the worker.", success)

			if _, err := st.MineNewBlock(context.Background()); !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to mine after shutdown, got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to mine after shutdown.", success)
		}
	}
}
