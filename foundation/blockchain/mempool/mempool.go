// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/mempool/selector"
	"go.uber.org/atomic"
)

// Mempool represents a cache of signed transactions waiting to be mined,
// keyed by sender:sequence.
type Mempool struct {
	pool     map[string]database.PendingTx
	mu       sync.RWMutex
	seq      *atomic.Uint64
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyFIFO)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]database.PendingTx),
		seq:      atomic.NewUint64(0),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds a signed transaction to the mempool. The transaction must not
// have been processed yet.
func (mp *Mempool) Upsert(tx database.Tx) (database.PendingTx, error) {
	if tx.ID != "" {
		return database.PendingTx{}, database.ErrAlreadyProcessed
	}

	if tx.Value < 0 {
		return database.PendingTx{}, database.ErrNegativeValue
	}

	if !tx.VerifySignature() {
		return database.PendingTx{}, database.ErrSignatureInvalid
	}

	ptx := database.PendingTx{
		Tx:        tx,
		Seq:       mp.seq.Inc(),
		TimeStamp: time.Now().UTC().UnixMilli(),
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[ptx.UniqueKey()] = ptx

	return ptx, nil
}

// Requeue puts a transaction that was taken back into the pool keeping its
// place in the arrival order.
func (mp *Mempool) Requeue(ptx database.PendingTx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[ptx.UniqueKey()] = ptx
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(ptx database.PendingTx) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	key := ptx.UniqueKey()
	if _, exists := mp.pool[key]; !exists {
		return errors.New("transaction not found in mempool")
	}

	delete(mp.pool, key)

	return nil
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.PendingTx)
}

// Copy returns a list of the current transactions in the order they arrived.
func (mp *Mempool) Copy() []database.PendingTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.PendingTx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		cpy = append(cpy, tx)
	}

	sort.Slice(cpy, func(i, j int) bool {
		return cpy[i].Seq < cpy[j].Seq
	})

	return cpy
}

// PickBest uses the configured select strategy to return the next set
// of transactions for the next block. The transactions stay in the pool.
func (mp *Mempool) PickBest(howMany int) []database.PendingTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.pick(howMany)
}

// Take picks the next set of transactions like PickBest and removes them from
// the pool under the same lock, so concurrent callers never get the same
// transaction.
func (mp *Mempool) Take(howMany int) []database.PendingTx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	txs := mp.pick(howMany)
	for _, tx := range txs {
		delete(mp.pool, tx.UniqueKey())
	}

	return txs
}

// =============================================================================

// pick must be called while holding a lock.
func (mp *Mempool) pick(howMany int) []database.PendingTx {
	if howMany == -1 {
		howMany = len(mp.pool)
	}

	// Group the transactions by sender.
	m := make(map[string][]database.PendingTx)
	for _, tx := range mp.pool {
		m[tx.From] = append(m[tx.From], tx)
	}

	return mp.selectFn(m, howMany)
}
