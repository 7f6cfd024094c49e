// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide ledger events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// A query of ?topics=state,worker restricts the events to those packages.
	var topics []string
	if q := r.URL.Query().Get("topics"); q != "" {
		topics = strings.Split(q, ",")
	}

	ch := h.Evts.Acquire(v.TraceID, topics...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(ntx); err != nil {
		return err
	}

	tx := ntx.toTx()

	h.Log.Infow("submit tran", "traceid", v.TraceID, "tx", tx)
	if err := h.State.SubmitTransaction(tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "transaction added to mempool",
		Pending: len(h.State.RetrieveMempool()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := toTxs(h.State.RetrieveMempool())
	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Mine mines the pending transactions into the next block.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.Log.Infow("mine block", "traceid", v.TraceID, "pending", len(h.State.RetrieveMempool()))

	blk, err := h.State.MineNewBlock(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// Blocks returns every block in the chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := toBlocks(h.State.RetrieveBlocks())
	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByIndex returns the block at the specified index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := parseIndex(web.Param(r, "index"))
	if err != nil {
		return err
	}

	blk, err := h.State.QueryBlock(index)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, toBlock(blk), http.StatusOK)
}

// BlocksByAccount returns the blocks holding transactions for the account.
func (h Handlers) BlocksByAccount(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blks := h.State.QueryBlocksByAccount(web.Param(r, "account"))
	if len(blks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(blks), http.StatusOK)
}

// Balances returns the balance of every account as of the specified block
// along with the lowest and highest balance seen up to that block. The index
// "latest" selects the tip of the chain.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var index uint64
	switch param := web.Param(r, "index"); param {
	case "latest":
		index = h.State.RetrieveLatestBlock().Header.Number

	default:
		var err error
		if index, err = parseIndex(param); err != nil {
			return err
		}
	}

	current, err := h.State.QueryBalances(index)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	low, high, err := h.State.QueryWatermarks(index)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	blk, err := h.State.QueryBlock(index)
	if err != nil {
		return errs.NewTrusted(err, http.StatusNotFound)
	}

	resp := balances{
		Index:       index,
		BlockHash:   blk.Hash,
		Uncommitted: len(h.State.RetrieveMempool()),
		Balances:    toBalances(current, low, high),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate reports whether the chain is intact.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validation{
		Valid:  true,
		Blocks: len(h.State.RetrieveBlocks()),
	}

	if err := h.State.ValidateChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Save writes the chain to the configured storage.
func (h Handlers) Save(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.SaveChain(); err != nil {
		if errors.Is(err, state.ErrNoStorage) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	resp := struct {
		Status string `json:"status"`
		Blocks int    `json:"blocks"`
	}{
		Status: "chain saved",
		Blocks: len(h.State.RetrieveBlocks()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Load replaces the chain with the content of the configured storage.
func (h Handlers) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.LoadChain(); err != nil {
		if errors.Is(err, state.ErrNoStorage) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return errs.NewTrusted(err, http.StatusUnprocessableEntity)
	}

	resp := struct {
		Status string `json:"status"`
		Blocks int    `json:"blocks"`
	}{
		Status: "chain loaded",
		Blocks: len(h.State.RetrieveBlocks()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func parseIndex(param string) (uint64, error) {
	index, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return 0, errs.Newf(http.StatusBadRequest, "invalid block index %q", param)
	}

	return index, nil
}
