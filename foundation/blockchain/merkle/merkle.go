// Package merkle provides an implementation of a merkle tree for validation
// support for the blockchain. Leaves are transaction ids in hex form and a
// parent is the hex hash of its two children concatenated. When a layer has
// an odd number of nodes the last one is promoted to the next layer as is,
// it is never paired with a copy of itself.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
)

// ErrNotFound is returned when a proof is requested for a value that is
// not a leaf of the tree.
var ErrNotFound = errors.New("unable to find data in tree")

// =============================================================================

// Tree represents a merkle tree built over an ordered set of ids. Layers[0]
// holds the leaves and the last layer holds the root.
type Tree struct {
	Layers       [][]string
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy(hashStrategy func() hash.Hash) func(t *Tree) {
	return func(t *Tree) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree for the specified ids. An empty set
// of ids produces a tree with no layers and an empty root.
func NewTree(ids []string, options ...func(t *Tree)) *Tree {
	t := Tree{
		hashStrategy: sha256.New,
	}

	for _, option := range options {
		option(&t)
	}

	t.Generate(ids)

	return &t
}

// Root is a convenience function that returns the sha256 merkle root for
// the specified ids.
func Root(ids []string) string {
	return NewTree(ids).RootHex()
}

// Generate constructs the layers of the tree from the specified ids. If the
// tree has been generated previously, it is re-generated from scratch.
func (t *Tree) Generate(ids []string) {
	t.Layers = nil
	if len(ids) == 0 {
		return
	}

	layer := make([]string, len(ids))
	copy(layer, ids)
	t.Layers = append(t.Layers, layer)

	for len(layer) > 1 {
		next := make([]string, 0, (len(layer)+1)/2)

		for i := 0; i+1 < len(layer); i += 2 {
			next = append(next, t.hashPair(layer[i], layer[i+1]))
		}

		// The odd one out moves up untouched.
		if len(layer)%2 == 1 {
			next = append(next, layer[len(layer)-1])
		}

		t.Layers = append(t.Layers, next)
		layer = next
	}
}

// RootHex returns the merkle root. The root of an empty tree is the empty
// string.
func (t *Tree) RootHex() string {
	if len(t.Layers) == 0 {
		return ""
	}

	return t.Layers[len(t.Layers)-1][0]
}

// Values returns a copy of the ids the tree was built from.
func (t *Tree) Values() []string {
	if len(t.Layers) == 0 {
		return nil
	}

	values := make([]string, len(t.Layers[0]))
	copy(values, t.Layers[0])
	return values
}

// ProofStep is one sibling hash on the path from a leaf to the root. Left
// reports if the sibling is concatenated before the running hash.
type ProofStep struct {
	Hash string `json:"hash"`
	Left bool   `json:"left"`
}

// Proof returns the set of sibling hashes needed to recompute the root from
// the specified id. Layers where the node was promoted contribute no step.
func (t *Tree) Proof(id string) ([]ProofStep, error) {
	if len(t.Layers) == 0 {
		return nil, ErrNotFound
	}

	idx := -1
	for i, leaf := range t.Layers[0] {
		if leaf == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNotFound
	}

	var proof []ProofStep
	for _, layer := range t.Layers[:len(t.Layers)-1] {
		switch {
		case idx%2 == 1:
			proof = append(proof, ProofStep{Hash: layer[idx-1], Left: true})
		case idx+1 < len(layer):
			proof = append(proof, ProofStep{Hash: layer[idx+1], Left: false})
		}
		idx /= 2
	}

	return proof, nil
}

// VerifyProof recomputes the root from the id and the proof and compares it
// against the root of this tree.
func (t *Tree) VerifyProof(id string, proof []ProofStep) bool {
	if len(t.Layers) == 0 {
		return false
	}

	running := id
	for _, step := range proof {
		if step.Left {
			running = t.hashPair(step.Hash, running)
			continue
		}
		running = t.hashPair(running, step.Hash)
	}

	return running == t.RootHex()
}

// String returns a string representation of the tree, one layer per line
// starting with the leaves.
func (t *Tree) String() string {
	var s string
	for i, layer := range t.Layers {
		s += fmt.Sprintf("%d: %v\n", i, layer)
	}

	return s
}

// =============================================================================

// hashPair hashes the concatenation of the left and right hex strings.
func (t *Tree) hashPair(left string, right string) string {
	h := t.hashStrategy()
	h.Write([]byte(left + right))

	return hex.EncodeToString(h.Sum(nil))
}
