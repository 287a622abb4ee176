// Package ledger maintains the set of unspent transaction outputs. It's the
// single source of truth for spendable value on the chain.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
	"go.uber.org/atomic"
)

// Set of error variables for ledger operations.
var (
	ErrNotFound  = errors.New("output not found")
	ErrDuplicate = errors.New("output already exists")
)

// =============================================================================

// Output represents coins owned by a public key that were produced by the
// parent transaction. Outputs are never changed, once spent they are removed.
type Output struct {
	ID         string `json:"id"`
	Owner      string `json:"owner"`
	Value      Amount `json:"value"`
	ParentTxID string `json:"parent_tx_id"`
}

// NewOutput constructs an output and calculates its id.
func NewOutput(owner string, value Amount, parentTxID string) Output {
	return Output{
		ID:         signature.Hash(owner, value.String(), parentTxID),
		Owner:      owner,
		Value:      value,
		ParentTxID: parentTxID,
	}
}

// IsMine reports if the output belongs to the specified public key.
func (o Output) IsMine(owner string) bool {
	return o.Owner == owner
}

// Update represents a set of changes that must be applied to the ledger as
// a single unit.
type Update struct {
	Add    []Output
	Remove []string
}

// =============================================================================

// Ledger manages the unspent outputs. Multiple readers can access the ledger
// at the same time, writers are exclusive.
type Ledger struct {
	mu       sync.RWMutex
	outputs  map[string]Output
	sequence *atomic.Uint64
}

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{
		outputs:  make(map[string]Output),
		sequence: atomic.NewUint64(0),
	}
}

// NextSequence returns the next value of a monotonically increasing counter
// used to make transaction ids unique.
func (l *Ledger) NextSequence() uint64 {
	return l.sequence.Inc()
}

// Put adds or replaces the output for the specified id.
func (l *Ledger) Put(id string, output Output) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.outputs[id] = output
}

// Get returns the output for the specified id.
func (l *Ledger) Get(id string) (Output, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	output, exists := l.outputs[id]
	if !exists {
		return Output{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return output, nil
}

// Remove deletes the output for the specified id and returns it.
func (l *Ledger) Remove(id string) (Output, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	output, exists := l.outputs[id]
	if exists {
		delete(l.outputs, id)
	}

	return output, exists
}

// Contains reports if an output exists for the specified id.
func (l *Ledger) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.outputs[id]
	return exists
}

// Apply performs all the removes and adds of the update under a single
// write lock. If any output to remove doesn't exist, or an output to add
// already does, nothing is changed.
func (l *Ledger) Apply(update Update) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]struct{}, len(update.Remove))
	for _, id := range update.Remove {
		if _, exists := seen[id]; exists {
			return fmt.Errorf("%w: %s removed twice", ErrNotFound, id)
		}
		seen[id] = struct{}{}

		if _, exists := l.outputs[id]; !exists {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}

	added := make(map[string]struct{}, len(update.Add))
	for _, output := range update.Add {
		if _, exists := added[output.ID]; exists {
			return fmt.Errorf("%w: %s added twice", ErrDuplicate, output.ID)
		}
		added[output.ID] = struct{}{}

		if _, exists := l.outputs[output.ID]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicate, output.ID)
		}
	}

	for _, id := range update.Remove {
		delete(l.outputs, id)
	}

	for _, output := range update.Add {
		l.outputs[output.ID] = output
	}

	return nil
}

// Copy makes a copy of the current set of outputs.
func (l *Ledger) Copy() map[string]Output {
	l.mu.RLock()
	defer l.mu.RUnlock()

	outputs := make(map[string]Output, len(l.outputs))
	for id, output := range l.outputs {
		outputs[id] = output
	}
	return outputs
}

// Len returns the number of unspent outputs.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.outputs)
}

// QueryByOwner returns the outputs owned by the specified public key ordered
// by id.
func (l *Ledger) QueryByOwner(owner string) []Output {
	var outputs []Output

	l.mu.RLock()
	{
		for _, output := range l.outputs {
			if output.IsMine(owner) {
				outputs = append(outputs, output)
			}
		}
	}
	l.mu.RUnlock()

	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].ID < outputs[j].ID
	})

	return outputs
}

// Balance returns the sum of the outputs owned by the specified public key.
func (l *Ledger) Balance(owner string) Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total Amount
	for _, output := range l.outputs {
		if output.IsMine(owner) {
			total += output.Value
		}
	}
	return total
}

// Total returns the sum of every unspent output.
func (l *Ledger) Total() Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total Amount
	for _, output := range l.outputs {
		total += output.Value
	}
	return total
}
