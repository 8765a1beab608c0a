// Copyright 2023 ConsenSys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package smt provides a fixed-depth sparse Merkle tree over the MiMC 2:1
// compression, with a membership gadget proving a leaf under a public root.
package smt

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
	"github.com/consensys/bulletproof-gadgets/std/hash/mimc"
)

// MaxDepth bounds tree depth so leaf indices fit a uint64.
const MaxDepth = 63

// Tree is a sparse Merkle tree of fixed depth. Absent leaves hold zero;
// default (all-empty) subtree hashes are precomputed per level so only
// populated paths are stored.
type Tree struct {
	depth    int
	params   mimc.Params
	defaults []fr.Element            // defaults[l] = hash of an empty subtree of height l
	nodes    []map[uint64]fr.Element // nodes[l][i], level 0 = leaves, level depth = root
}

// NewTree returns an empty tree of the given depth (2^depth leaf slots).
func NewTree(params mimc.Params, depth int) (*Tree, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, fmt.Errorf("smt: depth %d outside [1, %d]: %w", depth, MaxDepth, r1cs.ErrInvalidParameter)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	defaults := make([]fr.Element, depth+1)
	for l := 1; l <= depth; l++ {
		defaults[l] = mimc.Compress(params, defaults[l-1], defaults[l-1])
	}
	nodes := make([]map[uint64]fr.Element, depth+1)
	for l := range nodes {
		nodes[l] = make(map[uint64]fr.Element)
	}
	return &Tree{depth: depth, params: params, defaults: defaults, nodes: nodes}, nil
}

// Depth returns the tree depth.
func (t *Tree) Depth() int { return t.depth }

func (t *Tree) node(level int, index uint64) fr.Element {
	if v, ok := t.nodes[level][index]; ok {
		return v
	}
	return t.defaults[level]
}

// Update sets the leaf at index and recomputes the path to the root.
func (t *Tree) Update(index uint64, leaf fr.Element) error {
	if index >= uint64(1)<<t.depth {
		return fmt.Errorf("smt: index %d outside depth-%d tree: %w", index, t.depth, r1cs.ErrInvalidParameter)
	}
	t.nodes[0][index] = leaf
	for l := 0; l < t.depth; l++ {
		var parent fr.Element
		if index&1 == 1 {
			parent = mimc.Compress(t.params, t.node(l, index^1), t.node(l, index))
		} else {
			parent = mimc.Compress(t.params, t.node(l, index), t.node(l, index^1))
		}
		index >>= 1
		t.nodes[l+1][index] = parent
	}
	return nil
}

// Root returns the current root hash.
func (t *Tree) Root() fr.Element { return t.node(t.depth, 0) }

// Proof is a Merkle path: the leaf, its index, and one sibling hash per
// level, leaf level first.
type Proof struct {
	Index    uint64
	Leaf     fr.Element
	Siblings []fr.Element
}

// Prove returns the membership path for the leaf at index.
func (t *Tree) Prove(index uint64) (Proof, error) {
	if index >= uint64(1)<<t.depth {
		return Proof{}, fmt.Errorf("smt: index %d outside depth-%d tree: %w", index, t.depth, r1cs.ErrInvalidParameter)
	}
	p := Proof{Index: index, Leaf: t.node(0, index), Siblings: make([]fr.Element, t.depth)}
	for l := 0; l < t.depth; l++ {
		p.Siblings[l] = t.node(l, (index>>uint(l))^1)
	}
	return p, nil
}

// DirectionBits returns the path direction bits of the proof, least
// significant (leaf level) first; a set bit means the current node is the
// right child at that level.
func (p Proof) DirectionBits(depth int) *bitset.BitSet {
	b := bitset.New(uint(depth))
	for i := 0; i < depth; i++ {
		if p.Index>>uint(i)&1 == 1 {
			b.Set(uint(i))
		}
	}
	return b
}

// Verify recomputes the root from the proof and compares it to root.
func Verify(params mimc.Params, root fr.Element, proof Proof) bool {
	cur := proof.Leaf
	for l, sibling := range proof.Siblings {
		if proof.Index>>uint(l)&1 == 1 {
			cur = mimc.Compress(params, sibling, cur)
		} else {
			cur = mimc.Compress(params, cur, sibling)
		}
	}
	return cur.Equal(&root)
}
