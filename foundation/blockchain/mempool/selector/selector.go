// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyFIFO  = "fifo"
	StrategyValue = "value"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyFIFO:  fifoSelect,
	StrategyValue: valueSelect,
}

// Func defines a function that takes a mempool of transactions grouped by
// sender and selects howMany of them in an order based on the functions
// strategy. All selector functions MUST respect arrival ordering for each
// sender since a later transaction may spend the change of an earlier one.
// Receiving -1 for howMany must return all the transactions in the strategies
// ordering.
type Func func(transactions map[string][]database.PendingTx, howMany int) []database.PendingTx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// Strategies returns the names of the registered strategies.
func Strategies() []string {
	return []string{StrategyFIFO, StrategyValue}
}

// =============================================================================

// bySeq provides sorting support by the arrival sequence.
type bySeq []database.PendingTx

// Len returns the number of transactions in the list.
func (bs bySeq) Len() int {
	return len(bs)
}

// Less helps to sort the list by sequence in ascending order to keep the
// transactions in the order they arrived.
func (bs bySeq) Less(i, j int) bool {
	return bs[i].Seq < bs[j].Seq
}

// Swap moves transactions in the order of the sequence value.
func (bs bySeq) Swap(i, j int) {
	bs[i], bs[j] = bs[j], bs[i]
}

// =============================================================================

// byValue provides sorting support by the transaction value.
type byValue []database.PendingTx

// Len returns the number of transactions in the list.
func (bv byValue) Len() int {
	return len(bv)
}

// Less helps to sort the list by value in descending order. Ties fall back
// to the arrival sequence so the ordering is stable.
func (bv byValue) Less(i, j int) bool {
	if bv[i].Value == bv[j].Value {
		return bv[i].Seq < bv[j].Seq
	}
	return bv[i].Value > bv[j].Value
}

// Swap moves transactions in the order of the value.
func (bv byValue) Swap(i, j int) {
	bv[i], bv[j] = bv[j], bv[i]
}
