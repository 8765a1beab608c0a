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

package smt

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
	"github.com/consensys/bulletproof-gadgets/std/hash/mimc"
)

// PathNode is one level of a committed Merkle path: the direction bit
// (1 when the current node is the right child) and the sibling hash.
type PathNode struct {
	Direction r1cs.AllocatedScalar
	Sibling   r1cs.AllocatedScalar
}

// VerifyGadget proves that leaf sits under the public root, following a
// committed path of exactly depth levels. Per level the ordered hash inputs
// are selected without branching:
//
//	left  = cur + d*(sibling - cur)
//	right = sibling + cur - left
//
// with d constrained boolean, then chained through the MiMC 2:1 compression.
// After all levels the running node is pinned to root. Only positive
// membership is provable here; flat-set non-membership is the std/set
// gadget's job.
func VerifyGadget(cs r1cs.ConstraintSystem, p mimc.Params, depth int, leaf r1cs.AllocatedScalar, path []PathNode, root fr.Element) error {
	if depth < 1 || depth > MaxDepth {
		return fmt.Errorf("smt: depth %d outside [1, %d]: %w", depth, MaxDepth, r1cs.ErrInvalidParameter)
	}
	if len(path) != depth {
		return fmt.Errorf("smt: path length %d does not match depth %d: %w", len(path), depth, r1cs.ErrInvalidParameter)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	cur := leaf.LC()
	for i, node := range path {
		d := node.Direction.LC()
		sibling := node.Sibling.LC()

		// booleanity of the direction bit: d * (1 - d) = 0
		cs.Constrain(d, r1cs.One().Sub(d), r1cs.LinearCombination{})

		m, err := cs.Multiply(d, sibling.Sub(cur))
		if err != nil {
			return fmt.Errorf("smt: level %d: %w", i, err)
		}
		left := cur.Add(m.LC())
		right := sibling.Add(cur).Sub(left)

		cur, err = mimc.CompressConstraints(cs, p, left, right)
		if err != nil {
			return fmt.Errorf("smt: level %d: %w", i, err)
		}
	}

	pub := cs.Public(root)
	cs.ConstrainLC(cur, pub.LC())
	return nil
}

// CommitProof allocates the committed wires of a native proof on cs and
// returns the gadget inputs. A verifier replays the same allocation order
// with nil assignments to rebuild the topology.
func CommitProof(cs r1cs.ConstraintSystem, proof Proof, depth int) (leaf r1cs.AllocatedScalar, path []PathNode, err error) {
	if len(proof.Siblings) != depth {
		return leaf, nil, fmt.Errorf("smt: proof has %d siblings, want %d: %w", len(proof.Siblings), depth, r1cs.ErrInvalidParameter)
	}
	leafValue := proof.Leaf
	leaf = cs.Commit(&leafValue)
	bits := proof.DirectionBits(depth)
	path = make([]PathNode, depth)
	for i := 0; i < depth; i++ {
		var d fr.Element
		if bits.Test(uint(i)) {
			d.SetOne()
		}
		sibling := proof.Siblings[i]
		path[i] = PathNode{
			Direction: cs.Commit(&d),
			Sibling:   cs.Commit(&sibling),
		}
	}
	return leaf, path, nil
}
