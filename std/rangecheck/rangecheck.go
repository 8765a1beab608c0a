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

// Package rangecheck proves that a committed value lies in [0, 2^n) via bit
// decomposition.
package rangecheck

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
)

// Check proves 0 <= v < 2^n. It allocates n bit wires hinted from the
// canonical decomposition of v, constrains each to be boolean and pins the
// weighted sum back to v. Booleanity forces each bit into {0,1} and the
// weighted sum then uniquely determines v, so the check has no slack. The
// bit wires are returned in little-endian order for callers that want to
// constrain the decomposition further.
//
// n must satisfy 1 <= n < field bit length so that 2^n does not wrap the
// modulus; this construction-time precondition is checked here.
func Check(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar, n int) ([]r1cs.AllocatedScalar, error) {
	if n < 1 || n >= fr.Bits {
		return nil, fmt.Errorf("rangecheck: bit width %d outside [1, %d): %w", n, fr.Bits, r1cs.ErrInvalidParameter)
	}

	val, err := cs.Evaluate(v.LC())
	if err != nil {
		return nil, fmt.Errorf("rangecheck: %w", err)
	}
	var decomposition big.Int
	if val != nil {
		val.BigInt(&decomposition)
	}

	var one, zero, coeff fr.Element
	one.SetOne()
	coeff.SetOne()

	bits := make([]r1cs.AllocatedScalar, n)
	var sum r1cs.LinearCombination
	for i := 0; i < n; i++ {
		var bitHint, complementHint *fr.Element
		if val != nil {
			var b, c fr.Element
			if decomposition.Bit(i) == 1 {
				b.SetOne()
			} else {
				c.SetOne()
			}
			bitHint, complementHint = &b, &c
		}

		// booleanity: bit * (1 - bit) = 0, with the gate factors tied
		// together by bit + complement = 1
		bit, complement, product, err := cs.AllocateMultiplier(bitHint, complementHint)
		if err != nil {
			return nil, fmt.Errorf("rangecheck: bit %d: %w", i, err)
		}
		cs.ConstrainEqual(product.LC(), zero)
		cs.ConstrainEqual(bit.LC().Add(complement.LC()), one)

		bits[i] = bit
		sum = sum.Add(bit.LC().Scale(coeff))
		coeff.Double(&coeff)
	}

	// sum(b_i * 2^i) = v
	cs.ConstrainLC(sum, v.LC())
	return bits, nil
}
