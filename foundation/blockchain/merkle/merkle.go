// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides an implementation of a merkle tree that summarizes
// the transactions of a block into a single root digest.
package merkle

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash(strategy digest.Strategy) (string, error)
	Equals(other T) bool
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint. A tree constructed with no
// values has no root and an empty MerkleRoot.
type Tree[T Hashable[T]] struct {
	Root       *Node[T]
	Leafs      []*Node[T]
	MerkleRoot string
	strategy   digest.Strategy
}

// WithHashStrategy is used to change the default hash strategy of using sha256
// when constructing a new tree.
func WithHashStrategy[T Hashable[T]](strategy digest.Strategy) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.strategy = strategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		strategy: digest.SHA256,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.Generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// Generate constructs the leafs and nodes of the tree from the specified
// data. If the tree has been generated previously, the tree is re-generated
// from scratch.
func (t *Tree[T]) Generate(values []T) error {
	t.Root = nil
	t.Leafs = nil
	t.MerkleRoot = ""

	if len(values) == 0 {
		return nil
	}

	leafs := make([]*Node[T], 0, len(values))
	for _, value := range values {
		hash, err := value.Hash(t.strategy)
		if err != nil {
			return err
		}

		leafs = append(leafs, &Node[T]{
			Hash:  hash,
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	// Each pass over the level produces the parents for the next level. A
	// single leaf is its own root.
	level := leafs
	for len(level) > 1 {
		next := make([]*Node[T], 0, (len(level)+1)/2)

		for i := 0; i < len(level); i += 2 {
			left, right := level[i], level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}

			n := Node[T]{
				Left:  left,
				Right: right,
				Hash:  hashPair(t.strategy, left.Hash, right.Hash),
				Tree:  t,
				dup:   left == right,
			}

			left.Parent = &n
			right.Parent = &n
			next = append(next, &n)
		}

		level = next
	}

	t.Root = level[0]
	t.Leafs = leafs
	t.MerkleRoot = t.Root.Hash

	return nil
}

// Rebuild is a helper function that will rebuild the tree reusing only the
// data that it currently holds in the leaves.
func (t *Tree[T]) Rebuild() error {
	return t.Generate(t.Values())
}

// Verify recalculates the hash of every leaf and folds them again, making
// sure the result matches the stored merkle root.
func (t *Tree[T]) Verify() error {
	hashes := make([]string, len(t.Leafs))
	for i, node := range t.Leafs {
		hash, err := node.Value.Hash(t.strategy)
		if err != nil {
			return err
		}
		hashes[i] = hash
	}

	if root := Root(hashes, t.strategy); root != t.MerkleRoot {
		return fmt.Errorf("merkle root invalid, got %s, exp %s", root, t.MerkleRoot)
	}

	return nil
}

// Contains reports whether the value is one of the leafs of the tree.
func (t *Tree[T]) Contains(value T) bool {
	for _, node := range t.Leafs {
		if node.Value.Equals(value) {
			return true
		}
	}

	return false
}

// Values returns the values stored in the leafs in their original order.
func (t *Tree[T]) Values() []T {
	values := make([]T, len(t.Leafs))
	for i, node := range t.Leafs {
		values[i] = node.Value
	}

	return values
}

// Strategy returns the hash strategy used by the tree.
func (t *Tree[T]) Strategy() digest.Strategy {
	return t.strategy
}

// String returns a string representation of the tree. Only leaf nodes are
// included in the output.
func (t *Tree[T]) String() string {
	s := ""

	for _, l := range t.Leafs {
		s += fmt.Sprint(l)
		s += "\n"
	}

	return s
}

// MarshalText implements the TextMarshaler interface and produces an error
// if anyone tries to marshal the Merkle tree. Use the Values function to
// return a slice that can be marshaled.
func (t *Tree[T]) MarshalText() (text []byte, err error) {
	return nil, errors.New("do not marshal the merkle tree, use Values")
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   string
	Value  T
	leaf   bool
	dup    bool
}

// String returns a string representation of the node.
func (n *Node[T]) String() string {
	return fmt.Sprintf("%t %t %s %v", n.leaf, n.dup, n.Hash, n.Value)
}

// =============================================================================

// Root folds an ordered set of digests into a single root digest. When a
// level has an odd number of digests the last one is paired with itself. No
// digests produces an empty root and a single digest is its own root.
func Root(hashes []string, strategy digest.Strategy) string {
	if len(hashes) == 0 {
		return ""
	}

	level := append([]string(nil), hashes...)
	for len(level) > 1 {
		next := make([]string, 0, (len(level)+1)/2)

		for i := 0; i < len(level); i += 2 {
			left, right := level[i], level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashPair(strategy, left, right))
		}

		level = next
	}

	return level[0]
}

// hashPair concatenates the two hex digests and hashes the result.
func hashPair(strategy digest.Strategy, left string, right string) string {
	return strategy.Sum([]byte(left + right))
}
