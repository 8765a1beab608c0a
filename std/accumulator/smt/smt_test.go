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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/bulletproof-gadgets/r1cs"
	"github.com/consensys/bulletproof-gadgets/std/hash/mimc"
)

func elem(u uint64) fr.Element {
	var e fr.Element
	e.SetUint64(u)
	return e
}

func testTree(t *testing.T, depth int) (*Tree, mimc.Params) {
	t.Helper()
	params, err := mimc.NewParams(mimc.DefaultSeed, mimc.DefaultRounds)
	require.NoError(t, err)
	tree, err := NewTree(params, depth)
	require.NoError(t, err)
	return tree, params
}

func TestNewTree(t *testing.T) {
	_, params := testTree(t, 4)

	_, err := NewTree(params, 0)
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
	_, err = NewTree(params, MaxDepth+1)
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
	_, err = NewTree(mimc.Params{}, 4)
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
}

func TestEmptyTreeRoot(t *testing.T) {
	// the empty root is the compression chain over the zero leaf
	tree, params := testTree(t, 3)
	want := elem(0)
	for i := 0; i < 3; i++ {
		want = mimc.Compress(params, want, want)
	}
	assert.Equal(t, want, tree.Root())
}

func TestUpdateAndProve(t *testing.T) {
	tree, params := testTree(t, 4)

	leaves := map[uint64]fr.Element{0: elem(11), 5: elem(22), 15: elem(33)}
	for idx, leaf := range leaves {
		require.NoError(t, tree.Update(idx, leaf))
	}
	root := tree.Root()

	for idx, leaf := range leaves {
		proof, err := tree.Prove(idx)
		require.NoError(t, err)
		assert.Equal(t, idx, proof.Index)
		assert.Equal(t, leaf, proof.Leaf)
		require.Len(t, proof.Siblings, 4)
		assert.True(t, Verify(params, root, proof))
	}

	// absent leaves still carry valid default-path proofs
	proof, err := tree.Prove(9)
	require.NoError(t, err)
	assert.Equal(t, elem(0), proof.Leaf)
	assert.True(t, Verify(params, root, proof))

	// updating a leaf changes the root and invalidates old proofs
	proof, err = tree.Prove(5)
	require.NoError(t, err)
	require.NoError(t, tree.Update(5, elem(44)))
	assert.NotEqual(t, root, tree.Root())
	assert.False(t, Verify(params, tree.Root(), proof))

	err = tree.Update(16, elem(1))
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
	_, err = tree.Prove(16)
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	tree, params := testTree(t, 3)
	require.NoError(t, tree.Update(2, elem(7)))
	root := tree.Root()

	proof, err := tree.Prove(2)
	require.NoError(t, err)
	require.True(t, Verify(params, root, proof))

	tampered := proof
	tampered.Leaf = elem(8)
	assert.False(t, Verify(params, root, tampered))

	tampered = proof
	tampered.Siblings = append([]fr.Element{}, proof.Siblings...)
	tampered.Siblings[1] = elem(99)
	assert.False(t, Verify(params, root, tampered))

	tampered = proof
	tampered.Index = 3
	assert.False(t, Verify(params, root, tampered))
}

func TestDirectionBits(t *testing.T) {
	proof := Proof{Index: 0b1010}
	bits := proof.DirectionBits(4)
	assert.False(t, bits.Test(0))
	assert.True(t, bits.Test(1))
	assert.False(t, bits.Test(2))
	assert.True(t, bits.Test(3))
}

func TestVerifyGadget(t *testing.T) {
	tree, params := testTree(t, 4)
	require.NoError(t, tree.Update(6, elem(42)))
	require.NoError(t, tree.Update(11, elem(43)))
	root := tree.Root()

	proof, err := tree.Prove(6)
	require.NoError(t, err)

	s := r1cs.NewSystem(r1cs.Proving)
	leaf, path, err := CommitProof(s, proof, tree.Depth())
	require.NoError(t, err)
	require.NoError(t, VerifyGadget(s, params, tree.Depth(), leaf, path, root))
	require.NoError(t, s.IsSolved())
	assert.Equal(t, []fr.Element{root}, s.PublicInputs())
}

func TestVerifyGadgetRejectsWrongWitness(t *testing.T) {
	tree, params := testTree(t, 3)
	require.NoError(t, tree.Update(1, elem(5)))
	root := tree.Root()
	proof, err := tree.Prove(1)
	require.NoError(t, err)

	// flipped direction bit
	s := r1cs.NewSystem(r1cs.Proving)
	flipped := proof
	flipped.Index ^= 1
	leaf, path, err := CommitProof(s, flipped, tree.Depth())
	require.NoError(t, err)
	require.NoError(t, VerifyGadget(s, params, tree.Depth(), leaf, path, root))
	assert.ErrorIs(t, s.IsSolved(), r1cs.ErrUnsatisfiedConstraint)

	// substituted sibling
	s = r1cs.NewSystem(r1cs.Proving)
	forged := proof
	forged.Siblings = append([]fr.Element{}, proof.Siblings...)
	forged.Siblings[0] = elem(123)
	leaf, path, err = CommitProof(s, forged, tree.Depth())
	require.NoError(t, err)
	require.NoError(t, VerifyGadget(s, params, tree.Depth(), leaf, path, root))
	assert.ErrorIs(t, s.IsSolved(), r1cs.ErrUnsatisfiedConstraint)

	// non-boolean direction wire
	s = r1cs.NewSystem(r1cs.Proving)
	two := elem(2)
	leafValue := proof.Leaf
	leaf = s.Commit(&leafValue)
	path = make([]PathNode, tree.Depth())
	for i := range path {
		sibling := proof.Siblings[i]
		d := elem(proof.Index >> uint(i) & 1)
		if i == 0 {
			d = two
		}
		path[i] = PathNode{Direction: s.Commit(&d), Sibling: s.Commit(&sibling)}
	}
	require.NoError(t, VerifyGadget(s, params, tree.Depth(), leaf, path, root))
	assert.ErrorIs(t, s.IsSolved(), r1cs.ErrUnsatisfiedConstraint)
}

func TestVerifyGadgetParameterChecks(t *testing.T) {
	tree, params := testTree(t, 3)
	proof, err := tree.Prove(0)
	require.NoError(t, err)

	s := r1cs.NewSystem(r1cs.Proving)
	leaf, path, err := CommitProof(s, proof, tree.Depth())
	require.NoError(t, err)

	err = VerifyGadget(s, params, 0, leaf, path, tree.Root())
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
	err = VerifyGadget(s, params, tree.Depth()+1, leaf, path, tree.Root())
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
	err = VerifyGadget(s, params, tree.Depth(), leaf, path[:2], tree.Root())
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)

	_, _, err = CommitProof(s, proof, 5)
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
}

func TestVerifierSynthesis(t *testing.T) {
	tree, params := testTree(t, 3)
	require.NoError(t, tree.Update(4, elem(17)))
	root := tree.Root()
	proof, err := tree.Prove(4)
	require.NoError(t, err)

	prover := r1cs.NewSystem(r1cs.Proving)
	leaf, path, err := CommitProof(prover, proof, tree.Depth())
	require.NoError(t, err)
	require.NoError(t, VerifyGadget(prover, params, tree.Depth(), leaf, path, root))

	verifier := r1cs.NewSystem(r1cs.Verifying)
	leaf = verifier.Commit(nil)
	path = make([]PathNode, tree.Depth())
	for i := range path {
		path[i] = PathNode{Direction: verifier.Commit(nil), Sibling: verifier.Commit(nil)}
	}
	require.NoError(t, VerifyGadget(verifier, params, tree.Depth(), leaf, path, root))

	assert.Equal(t, prover.NbConstraints(), verifier.NbConstraints())
	assert.Equal(t, prover.NbWires(), verifier.NbWires())
}
