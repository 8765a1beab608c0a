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

package poseidon

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
	"github.com/consensys/bulletproof-gadgets/std/math/cmp"
)

// SboxType selects the non-linear substitution of a Poseidon instance. The
// two variants define different permutations; outputs on the same input are
// unrelated.
type SboxType uint8

const (
	// Cube is x -> x^3, two multiplicative constraints per application.
	Cube SboxType = iota
	// Inverse is x -> x^-1 (0 -> 0 natively), one multiplicative constraint
	// x * inv = 1 per application; the zero case cannot be witnessed in
	// circuit, so a zero mid-permutation state aborts proving.
	Inverse
)

func (s SboxType) String() string {
	switch s {
	case Cube:
		return "cube"
	case Inverse:
		return "inverse"
	default:
		return "unknown"
	}
}

func (s SboxType) valid() bool { return s == Cube || s == Inverse }

// apply computes the S-box natively.
func (s SboxType) apply(x fr.Element) fr.Element {
	var res fr.Element
	switch s {
	case Cube:
		res.Square(&x).Mul(&res, &x)
	case Inverse:
		res.Inverse(&x)
	}
	return res
}

// synthesize constrains one S-box application to input + roundKey.
func (s SboxType) synthesize(cs r1cs.ConstraintSystem, input r1cs.LinearCombination, roundKey fr.Element) (r1cs.LinearCombination, error) {
	t := input.AddConstant(roundKey)
	switch s {
	case Cube:
		sq, err := cs.Multiply(t, t)
		if err != nil {
			return nil, err
		}
		cube, err := cs.Multiply(sq.LC(), t)
		if err != nil {
			return nil, err
		}
		return cube.LC(), nil
	case Inverse:
		inv, err := cmp.Inverse(cs, t)
		if err != nil {
			return nil, err
		}
		return inv.LC(), nil
	default:
		return nil, fmt.Errorf("poseidon: unknown S-box %d: %w", s, r1cs.ErrInvalidParameter)
	}
}
