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

// Package cmp provides inequality gadgets: proofs that a committed value is
// non-zero, or differs from a constant, via the multiplicative-inverse trick.
package cmp

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
)

// AssertNonZero proves v != 0 by allocating inv and constraining v*inv = 1,
// which is satisfiable only when v has a multiplicative inverse. In Proving
// mode a zero value is rejected immediately with ErrStatementFalse instead
// of silently emitting an unsatisfiable circuit.
func AssertNonZero(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar) error {
	_, err := Inverse(cs, v.LC())
	return err
}

// AssertNotEqual proves v != c by applying the inverse trick to v - c.
func AssertNotEqual(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar, c fr.Element) error {
	_, err := Inverse(cs, v.LC().SubConstant(c))
	return err
}

// AssertNotEqualLC proves a != b for two linear combinations.
func AssertNotEqualLC(cs r1cs.ConstraintSystem, a, b r1cs.LinearCombination) error {
	_, err := Inverse(cs, a.Sub(b))
	return err
}

// Inverse allocates the multiplicative inverse of lc and constrains
// lc * inv = 1. It costs one multiplicative constraint. The inverse wire is
// returned so callers (e.g. the Poseidon inverse S-box) can build on it.
func Inverse(cs r1cs.ConstraintSystem, lc r1cs.LinearCombination) (r1cs.AllocatedScalar, error) {
	var hint *fr.Element
	val, err := cs.Evaluate(lc)
	if err != nil {
		return r1cs.AllocatedScalar{}, fmt.Errorf("cmp: %w", err)
	}
	if val != nil {
		if val.IsZero() {
			return r1cs.AllocatedScalar{}, fmt.Errorf("cmp: value has no inverse: %w", r1cs.ErrStatementFalse)
		}
		var inv fr.Element
		inv.Inverse(val)
		hint = &inv
	}
	invScalar := cs.Allocate(hint)
	var one fr.Element
	one.SetOne()
	cs.Constrain(lc, invScalar.LC(), r1cs.Constant(one))
	return invScalar, nil
}

// IsNonZero returns a 0/1 indicator wire y for x != 0, given a hinted
// candidate inverse xInv. The constraints x*xInv = y and (1-y)*x = 0 force
// y = 1 exactly when x is non-zero and y = 0 when x is zero, without making
// either case unsatisfiable.
func IsNonZero(cs r1cs.ConstraintSystem, x, xInv r1cs.AllocatedScalar) (r1cs.AllocatedScalar, error) {
	y, err := cs.Multiply(x.LC(), xInv.LC())
	if err != nil {
		return r1cs.AllocatedScalar{}, fmt.Errorf("cmp: %w", err)
	}
	// (1 - y) * x = 0
	cs.Constrain(r1cs.One().Sub(y.LC()), x.LC(), r1cs.LinearCombination{})
	return y, nil
}
