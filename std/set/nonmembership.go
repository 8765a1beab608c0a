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

package set

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/bulletproof-gadgets/r1cs"
	"github.com/consensys/bulletproof-gadgets/std/math/cmp"
)

// AssertNotMember proves that v equals none of the public set's elements:
// the folded product prod(v - s_i) is constrained to be non-zero via the
// inverse trick, hence no factor is zero. In Proving mode a value that is a
// member is rejected immediately with ErrStatementFalse.
func AssertNotMember(cs r1cs.ConstraintSystem, v r1cs.AllocatedScalar, set []fr.Element) error {
	if len(set) == 0 {
		return fmt.Errorf("set non-membership: empty set: %w", r1cs.ErrInvalidParameter)
	}
	diffs := make([]r1cs.LinearCombination, len(set))
	for i, s := range set {
		diffs[i] = v.LC().SubConstant(s)
	}
	prod, err := foldProduct(cs, diffs)
	if err != nil {
		return fmt.Errorf("set non-membership: %w", err)
	}
	if _, err := cmp.Inverse(cs, prod); err != nil {
		if errors.Is(err, r1cs.ErrStatementFalse) {
			return fmt.Errorf("set non-membership: value is a member: %w", r1cs.ErrStatementFalse)
		}
		return fmt.Errorf("set non-membership: %w", err)
	}
	return nil
}
