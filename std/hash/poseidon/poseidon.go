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

// Package poseidon provides the Poseidon permutation, natively and as a
// circuit gadget: per round, round-key addition, an S-box layer (all state
// elements in full rounds, only the first in partial rounds) and MDS mixing.
// The MDS layer is linear and costs no constraints.
package poseidon

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
)

// Permutation runs the permutation natively on a state of exactly
// params.Width elements.
func Permutation(p Params, sbox SboxType, input []fr.Element) ([]fr.Element, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !sbox.valid() {
		return nil, fmt.Errorf("poseidon: unknown S-box %d: %w", sbox, r1cs.ErrInvalidParameter)
	}
	if len(input) != p.Width {
		return nil, fmt.Errorf("poseidon: state has %d elements, want %d: %w", len(input), p.Width, r1cs.ErrInvalidParameter)
	}

	state := make([]fr.Element, p.Width)
	copy(state, input)

	keyOffset := 0
	round := func(full bool) {
		for i := range state {
			state[i].Add(&state[i], &p.RoundKeys[keyOffset])
			keyOffset++
			if full || i == 0 {
				state[i] = sbox.apply(state[i])
			}
		}
		state = mix(p, state)
	}
	for r := 0; r < p.FullRoundsBeginning; r++ {
		round(true)
	}
	for r := 0; r < p.PartialRounds; r++ {
		round(false)
	}
	for r := 0; r < p.FullRoundsEnd; r++ {
		round(true)
	}
	return state, nil
}

func mix(p Params, state []fr.Element) []fr.Element {
	next := make([]fr.Element, p.Width)
	var t fr.Element
	for i := 0; i < p.Width; i++ {
		for j := 0; j < p.Width; j++ {
			t.Mul(&p.MDS[i][j], &state[j])
			next[i].Add(&next[i], &t)
		}
	}
	return next
}

// Hash2 is the 2:1 hash: the two inputs occupy state slots 1 and 2, slot 0
// and the tail stay zero, and slot 1 of the permuted state is the digest.
func Hash2(p Params, sbox SboxType, xl, xr fr.Element) (fr.Element, error) {
	if p.Width < 3 {
		return fr.Element{}, fmt.Errorf("poseidon: width %d < 3 for 2:1 hash: %w", p.Width, r1cs.ErrInvalidParameter)
	}
	input := make([]fr.Element, p.Width)
	input[1] = xl
	input[2] = xr
	out, err := Permutation(p, sbox, input)
	if err != nil {
		return fr.Element{}, err
	}
	return out[1], nil
}

// PermutationConstraints arithmetizes the permutation over linear
// combinations and returns the output state as combinations of the input
// wires and the allocated S-box outputs.
func PermutationConstraints(cs r1cs.ConstraintSystem, p Params, sbox SboxType, input []r1cs.LinearCombination) ([]r1cs.LinearCombination, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !sbox.valid() {
		return nil, fmt.Errorf("poseidon: unknown S-box %d: %w", sbox, r1cs.ErrInvalidParameter)
	}
	if len(input) != p.Width {
		return nil, fmt.Errorf("poseidon: state has %d elements, want %d: %w", len(input), p.Width, r1cs.ErrInvalidParameter)
	}

	state := make([]r1cs.LinearCombination, p.Width)
	copy(state, input)

	keyOffset := 0
	round := func(full bool) error {
		sboxOut := make([]r1cs.LinearCombination, p.Width)
		for i := range state {
			key := p.RoundKeys[keyOffset]
			keyOffset++
			if full || i == 0 {
				out, err := sbox.synthesize(cs, state[i], key)
				if err != nil {
					return err
				}
				sboxOut[i] = out
			} else {
				sboxOut[i] = state[i].AddConstant(key)
			}
		}
		state = mixConstraints(p, sboxOut)
		return nil
	}
	for r := 0; r < p.FullRoundsBeginning; r++ {
		if err := round(true); err != nil {
			return nil, err
		}
	}
	for r := 0; r < p.PartialRounds; r++ {
		if err := round(false); err != nil {
			return nil, err
		}
	}
	for r := 0; r < p.FullRoundsEnd; r++ {
		if err := round(true); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func mixConstraints(p Params, state []r1cs.LinearCombination) []r1cs.LinearCombination {
	next := make([]r1cs.LinearCombination, p.Width)
	for i := 0; i < p.Width; i++ {
		for j := 0; j < p.Width; j++ {
			next[i] = next[i].Add(state[j].Scale(p.MDS[i][j]))
		}
	}
	return next
}

// AssertPermutation constrains the permutation of the committed input state
// to equal the public output state.
func AssertPermutation(cs r1cs.ConstraintSystem, p Params, sbox SboxType, input []r1cs.AllocatedScalar, output []fr.Element) error {
	if len(output) != p.Width {
		return fmt.Errorf("poseidon: output has %d elements, want %d: %w", len(output), p.Width, r1cs.ErrInvalidParameter)
	}
	lcs := make([]r1cs.LinearCombination, len(input))
	for i, in := range input {
		lcs[i] = in.LC()
	}
	out, err := PermutationConstraints(cs, p, sbox, lcs)
	if err != nil {
		return err
	}
	for i := range out {
		pub := cs.Public(output[i])
		cs.ConstrainLC(out[i], pub.LC())
	}
	return nil
}

// Hash2Constraints arithmetizes Hash2 and returns the digest combination.
func Hash2Constraints(cs r1cs.ConstraintSystem, p Params, sbox SboxType, xl, xr r1cs.LinearCombination) (r1cs.LinearCombination, error) {
	if p.Width < 3 {
		return nil, fmt.Errorf("poseidon: width %d < 3 for 2:1 hash: %w", p.Width, r1cs.ErrInvalidParameter)
	}
	input := make([]r1cs.LinearCombination, p.Width)
	input[1] = xl
	input[2] = xr
	out, err := PermutationConstraints(cs, p, sbox, input)
	if err != nil {
		return nil, err
	}
	return out[1], nil
}

// AssertHash2 constrains the 2:1 hash of two committed inputs to equal the
// public digest.
func AssertHash2(cs r1cs.ConstraintSystem, p Params, sbox SboxType, xl, xr r1cs.AllocatedScalar, digest fr.Element) error {
	out, err := Hash2Constraints(cs, p, sbox, xl.LC(), xr.LC())
	if err != nil {
		return err
	}
	pub := cs.Public(digest)
	cs.ConstrainLC(out, pub.LC())
	return nil
}
