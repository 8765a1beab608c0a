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

// Package set provides set membership and non-membership gadgets: proofs
// that a committed value is (or is not) one of the elements of a set,
// without revealing which.
package set

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
)

// MembershipStyle selects one of the interchangeable membership encodings.
// Both produce the same proof obligation: v is a member of the set.
type MembershipStyle uint8

const (
	// ProductFold constrains the product of differences prod(v - s_i) to
	// zero, folding it with k-1 multiplication gates. Cheapest in wires.
	ProductFold MembershipStyle = iota
	// IndicatorSelect allocates one boolean indicator per element with
	// exactly one set, and constrains v = sum(ind_i * s_i). Preferred when
	// the caller also needs to reason about the position of the match.
	IndicatorSelect
)

func (s MembershipStyle) String() string {
	switch s {
	case ProductFold:
		return "product-fold"
	case IndicatorSelect:
		return "indicator-select"
	default:
		return "unknown"
	}
}

// AssertMember proves that v equals one element of the public set. In
// Proving mode a value outside the set is rejected immediately with
// ErrStatementFalse.
func AssertMember(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar, set []fr.Element, style MembershipStyle) error {
	if len(set) == 0 {
		return fmt.Errorf("set membership: empty set: %w", r1cs.ErrInvalidParameter)
	}
	switch style {
	case ProductFold:
		return productMember(cs, v, set)
	case IndicatorSelect:
		_, err := IndicatorMember(cs, v, set)
		return err
	default:
		return fmt.Errorf("set membership: unknown style %d: %w", style, r1cs.ErrInvalidParameter)
	}
}

func productMember(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar, set []fr.Element) error {
	diffs := make([]r1cs.LinearCombination, len(set))
	for i, s := range set {
		diffs[i] = v.LC().SubConstant(s)
	}
	prod, err := foldProduct(cs, diffs)
	if err != nil {
		return fmt.Errorf("set membership: %w", err)
	}
	if val, err := cs.Evaluate(prod); err != nil {
		return fmt.Errorf("set membership: %w", err)
	} else if val != nil && !val.IsZero() {
		return fmt.Errorf("set membership: value is not a member: %w", r1cs.ErrStatementFalse)
	}
	var zero fr.Element
	cs.ConstrainEqual(prod, zero)
	return nil
}

// IndicatorMember proves membership with the indicator encoding and returns
// the indicator wires, in set order, for callers proving properties of the
// matched position.
func IndicatorMember(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar, set []fr.Element) ([]r1cs.AllocatedScalar, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("set membership: empty set: %w", r1cs.ErrInvalidParameter)
	}

	val, err := cs.Evaluate(v.LC())
	if err != nil {
		return nil, fmt.Errorf("set membership: %w", err)
	}
	match := -1
	if val != nil {
		for i, s := range set {
			if s.Equal(val) {
				match = i
				break
			}
		}
		if match == -1 {
			return nil, fmt.Errorf("set membership: value is not a member: %w", r1cs.ErrStatementFalse)
		}
	}

	var one, zero fr.Element
	one.SetOne()

	indicators := make([]r1cs.AllocatedScalar, len(set))
	var indicatorSum, selectedSum r1cs.LinearCombination
	for i, s := range set {
		var bitHint, complementHint *fr.Element
		if val != nil {
			var b, c fr.Element
			if i == match {
				b.SetOne()
			} else {
				c.SetOne()
			}
			bitHint, complementHint = &b, &c
		}
		ind, complement, product, err := cs.AllocateMultiplier(bitHint, complementHint)
		if err != nil {
			return nil, fmt.Errorf("set membership: indicator %d: %w", i, err)
		}
		cs.ConstrainEqual(product.LC(), zero)
		cs.ConstrainEqual(ind.LC().Add(complement.LC()), one)

		indicators[i] = ind
		indicatorSum = indicatorSum.Add(ind.LC())
		selectedSum = selectedSum.Add(ind.LC().Scale(s))
	}

	// exactly one indicator set, and it selects v
	cs.ConstrainEqual(indicatorSum, one)
	cs.ConstrainLC(selectedSum, v.LC())
	return indicators, nil
}

// AssertMemberCommitted proves that v equals one element of a committed set,
// with the product-of-differences encoding (the indicator encoding needs the
// set values as coefficients and so only applies to public sets).
func AssertMemberCommitted(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar, set []r1cs.AllocatedScalar) error {
	if len(set) == 0 {
		return fmt.Errorf("set membership: empty set: %w", r1cs.ErrInvalidParameter)
	}
	diffs := make([]r1cs.LinearCombination, len(set))
	for i, s := range set {
		diffs[i] = v.LC().Sub(s.LC())
	}
	prod, err := foldProduct(cs, diffs)
	if err != nil {
		return fmt.Errorf("set membership: %w", err)
	}
	if val, err := cs.Evaluate(prod); err != nil {
		return fmt.Errorf("set membership: %w", err)
	} else if val != nil && !val.IsZero() {
		return fmt.Errorf("set membership: value is not a member: %w", r1cs.ErrStatementFalse)
	}
	var zero fr.Element
	cs.ConstrainEqual(prod, zero)
	return nil
}

// foldProduct chains len(lcs)-1 multiplication gates folding the product of
// the given combinations. Each partial product is evaluated mid-construction
// and immediately bound by the multiplier constraint, so no unconstrained
// value leaks into later logic.
func foldProduct(cs r1cs.ConstraintSystem, lcs []r1cs.LinearCombination) (r1cs.LinearCombination, error) {
	acc := lcs[0]
	for i := 1; i < len(lcs); i++ {
		out, err := cs.Multiply(acc, lcs[i])
		if err != nil {
			return nil, err
		}
		acc = out.LC()
	}
	return acc, nil
}
