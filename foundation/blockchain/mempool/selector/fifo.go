package selector

import (
	"sort"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
)

// fifoSelect returns transactions in the order they arrived regardless of
// who sent them.
var fifoSelect = func(m map[string][]database.PendingTx, howMany int) []database.PendingTx {
	var all []database.PendingTx
	for _, txs := range m {
		all = append(all, txs...)
	}

	sort.Sort(bySeq(all))

	if howMany == -1 || howMany > len(all) {
		return all
	}

	return all[:howMany]
}
