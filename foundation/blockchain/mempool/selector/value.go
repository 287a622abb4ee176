package selector

import (
	"sort"

	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
)

// valueSelect returns the transactions moving the most value while respecting
// the arrival order for each sender.
var valueSelect = func(m map[string][]database.PendingTx, howMany int) []database.PendingTx {

	/*
		Bill: {Seq: 7, Value: 25},
			  {Seq: 2, Value: 15},
		Pavl: {Seq: 8, Value: 20},
			  {Seq: 1, Value: 7.5},
		Edua: {Seq: 9, Value: 7.5},
			  {Seq: 3, Value: 10},
	*/

	// Sort the transactions per sender by sequence.
	for key := range m {
		if len(m[key]) > 1 {
			sort.Sort(bySeq(m[key]))
		}
	}

	/*
		Bill: {Seq: 2, Value: 15},
		      {Seq: 7, Value: 25},
		Pavl: {Seq: 1, Value: 7.5},
		      {Seq: 8, Value: 20},
		Edua: {Seq: 3, Value: 10},
		      {Seq: 9, Value: 7.5},
	*/

	// Pick the first transaction in the slice for each sender. Each iteration
	// represents a new row of selections. Keep doing that until all the
	// transactions have been selected.
	var rows [][]database.PendingTx
	for {
		var row []database.PendingTx
		for key := range m {
			if len(m[key]) > 0 {
				row = append(row, m[key][0])
				m[key] = m[key][1:]
			}
		}
		if row == nil {
			break
		}
		sort.Sort(bySeq(row))
		rows = append(rows, row)
	}

	/*
		0: Pavl: {Seq: 1, Value: 7.5},
		0: Bill: {Seq: 2, Value: 15},
		0: Edua: {Seq: 3, Value: 10},
		1: Bill: {Seq: 7, Value: 25},
		1: Pavl: {Seq: 8, Value: 20},
		1: Edua: {Seq: 9, Value: 7.5},
	*/

	if howMany == -1 {
		howMany = 0
		for _, row := range rows {
			howMany += len(row)
		}
	}

	// Sort a row by value only when it can't be taken whole. Keep pulling
	// transactions from each row until the amount is fulfilled or there are
	// no more transactions.
	final := []database.PendingTx{}
done:
	for _, row := range rows {
		need := howMany - len(final)
		if len(row) > need {
			sort.Sort(byValue(row))
			final = append(final, row[:need]...)
			break done
		}
		final = append(final, row...)
	}

	/*
		0: Pavl: {Seq: 1, Value: 7.5},
		1: Bill: {Seq: 2, Value: 15},
		2: Edua: {Seq: 3, Value: 10},
		3: Bill: {Seq: 7, Value: 25},
	*/

	return final
}
