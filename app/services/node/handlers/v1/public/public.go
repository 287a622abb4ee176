// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"github.com/liquiduspro/noobchain/business/sys/validate"
	"github.com/liquiduspro/noobchain/business/web/errs"
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
	"github.com/liquiduspro/noobchain/foundation/blockchain/state"
	"github.com/liquiduspro/noobchain/foundation/blockchain/worker"
	"github.com/liquiduspro/noobchain/foundation/events"
	"github.com/liquiduspro/noobchain/foundation/nameservice"
	"github.com/liquiduspro/noobchain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	Pool  *worker.Pool
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
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

	ch := h.Evts.Acquire(v.TraceID)
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

// SubmitTransaction adds a signed wallet transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx submitTx
	if err := web.Decode(r, &stx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := stx.toTx()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "from", h.NS.Lookup(tx.From), "to", h.NS.Lookup(tx.To), "value", tx.Value, "inputs", len(tx.Inputs))

	ptx, err := h.State.SubmitTransaction(tx)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
		Seq    uint64 `json:"seq"`
	}{
		Status: "transaction added to mempool",
		Seq:    ptx.Seq,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	owner := web.Param(r, "owner")

	mempool := h.State.RetrieveMempool()

	trans := []tx{}
	for _, ptx := range mempool {
		if owner != "" && owner != ptx.From && owner != ptx.To {
			continue
		}

		t := h.toTx(ptx.Tx)
		t.Seq = ptx.Seq
		t.TimeStamp = ptx.TimeStamp
		trans = append(trans, t)
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Balances returns the current balance for the owner or for every owner
// holding unspent outputs.
func (h Handlers) Balances(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	owner := web.Param(r, "owner")

	var bals []balance
	switch owner {
	case "":
		totals := make(map[string]ledger.Amount)
		for _, output := range h.State.RetrieveLedger() {
			totals[output.Owner] += output.Value
		}
		for owner, total := range totals {
			bals = append(bals, balance{Owner: owner, Name: h.NS.Lookup(owner), Balance: total})
		}
		sort.Slice(bals, func(i, j int) bool { return bals[i].Owner < bals[j].Owner })

	default:
		if !signature.IsPublicKey(owner) {
			return errs.NewTrusted(errors.New("owner is not a public key"), http.StatusBadRequest)
		}
		bals = []balance{{Owner: owner, Name: h.NS.Lookup(owner), Balance: h.State.QueryBalance(owner)}}
	}

	var latest string
	if blk, ok := h.State.RetrieveLatestBlock(); ok {
		latest = blk.Hash
	}

	resp := balances{
		LastestBlock: latest,
		Uncommitted:  h.State.QueryMempoolLength(),
		Balances:     bals,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Outputs returns the unspent outputs owned by the public key. A wallet
// uses them to select the inputs for a new transaction.
func (h Handlers) Outputs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	owner := web.Param(r, "owner")
	if !signature.IsPublicKey(owner) {
		return errs.NewTrusted(errors.New("owner is not a public key"), http.StatusBadRequest)
	}

	resp := outputs{
		Owner:   owner,
		Name:    h.NS.Lookup(owner),
		Outputs: h.State.QueryByOwner(owner),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// BlocksByOwner returns all the blocks holding a transaction for the owner.
// All blocks are returned when no owner is specified.
func (h Handlers) BlocksByOwner(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	owner := web.Param(r, "owner")

	// The index of a block is only known from the full chain.
	numbers := make(map[string]int)
	for i, blk := range h.State.RetrieveBlocks() {
		numbers[blk.Hash] = i
	}

	dbBlocks := h.State.QueryBlocksByOwner(owner)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(numbers[blk.Hash], blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlocksByNumber returns the blocks in the range of numbers. The word latest
// can be used in place of a number.
func (h Handlers) BlocksByNumber(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := blockNumber(web.Param(r, "from"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := blockNumber(web.Param(r, "to"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from != state.QueryLastest && to != state.QueryLastest && from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	dbBlocks := h.State.QueryBlocksByNumber(from, to)
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	if from == state.QueryLastest {
		from = len(h.State.RetrieveBlocks()) - len(dbBlocks)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = h.toBlock(from+i, blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// ValidateChain checks the chain and the ledger built from it.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validation{
		Blocks: len(h.State.RetrieveBlocks()),
		Chain:  "valid",
		Ledger: "valid",
	}

	if err := h.State.ValidateChain(); err != nil {
		resp.Chain = err.Error()
	}

	if err := h.State.ValidateLedger(); err != nil {
		resp.Ledger = err.Error()
	}

	status := http.StatusOK
	if resp.Chain != "valid" {
		status = http.StatusConflict
	}

	return web.Respond(ctx, w, resp, status)
}

// MiningStats returns the counters kept by the pool of miners.
func (h Handlers) MiningStats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := miningStats{
		Stats:      h.Pool.Stats(),
		Workers:    h.Pool.Workers(),
		Difficulty: h.State.Difficulty(),
		Height:     len(h.State.RetrieveBlocks()),
		TipHash:    h.State.TipHash(),
		Pending:    h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining wakes the pool up to mine whatever is in the mempool.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.Pool.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func (h Handlers) toTx(t database.Tx) tx {
	inputs := make([]string, len(t.Inputs))
	for i, in := range t.Inputs {
		inputs[i] = in.OutputID
	}

	return tx{
		ID:       t.ID,
		From:     t.From,
		FromName: h.NS.Lookup(t.From),
		To:       t.To,
		ToName:   h.NS.Lookup(t.To),
		Value:    t.Value,
		Inputs:   inputs,
		Outputs:  t.Outputs,
		Sig:      hexutil.Encode(t.Signature),
	}
}

func (h Handlers) toBlock(number int, blk database.Block) block {
	trans := make([]tx, len(blk.Trans))
	for i, t := range blk.Trans {
		trans[i] = h.toTx(t)
	}

	return block{
		Number:        number,
		PrevBlockHash: blk.PrevBlockHash,
		Hash:          blk.Hash,
		TimeStamp:     blk.TimeStamp,
		Nonce:         blk.Nonce,
		MerkleRoot:    blk.MerkleRoot,
		Transactions:  trans,
	}
}

func blockNumber(s string) (int, error) {
	if s == "latest" || s == "" {
		return state.QueryLastest, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid block number %q", s)
	}

	return n, nil
}
