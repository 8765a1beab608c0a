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

package rangecheck

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/bulletproof-gadgets/r1cs"
)

func elem(u uint64) fr.Element {
	var e fr.Element
	e.SetUint64(u)
	return e
}

func checkValue(v uint64, n int) error {
	s := r1cs.NewSystem(r1cs.Proving)
	e := elem(v)
	a := s.Commit(&e)
	if _, err := Check(s, a, n); err != nil {
		return err
	}
	return s.IsSolved()
}

func TestCheckInRange(t *testing.T) {
	s := r1cs.NewSystem(r1cs.Proving)
	v := elem(13)
	a := s.Commit(&v)

	bits, err := Check(s, a, 8)
	require.NoError(t, err)
	require.Len(t, bits, 8)

	// 13 = 0b1101, little-endian bit wires
	for i, want := range []uint64{1, 0, 1, 1, 0, 0, 0, 0} {
		require.NotNil(t, bits[i].Assignment)
		assert.Equal(t, elem(want), *bits[i].Assignment)
	}
	require.NoError(t, s.IsSolved())

	// 3 constraints per bit plus the weighted sum
	assert.Equal(t, 3*8+1, s.NbConstraints())
}

func TestCheckBoundaries(t *testing.T) {
	require.NoError(t, checkValue(0, 8))
	require.NoError(t, checkValue(255, 8))
	assert.ErrorIs(t, checkValue(256, 8), r1cs.ErrUnsatisfiedConstraint)
	assert.ErrorIs(t, checkValue(1<<20, 8), r1cs.ErrUnsatisfiedConstraint)
}

func TestCheckInvalidWidth(t *testing.T) {
	s := r1cs.NewSystem(r1cs.Proving)
	v := elem(1)
	a := s.Commit(&v)

	_, err := Check(s, a, 0)
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
	_, err = Check(s, a, fr.Bits)
	assert.ErrorIs(t, err, r1cs.ErrInvalidParameter)
	assert.Equal(t, 0, s.NbConstraints())
}

func TestCheckVerifierSynthesis(t *testing.T) {
	prover := r1cs.NewSystem(r1cs.Proving)
	v := elem(77)
	_, err := Check(prover, prover.Commit(&v), 16)
	require.NoError(t, err)

	verifier := r1cs.NewSystem(r1cs.Verifying)
	_, err = Check(verifier, verifier.Commit(nil), 16)
	require.NoError(t, err)

	assert.Equal(t, prover.NbConstraints(), verifier.NbConstraints())
	assert.Equal(t, prover.NbWires(), verifier.NbWires())
}

func TestCheckProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	const n = 16
	properties.Property("any v < 2^n satisfies the range constraints", prop.ForAll(
		func(v uint64) bool {
			return checkValue(v, n) == nil
		},
		gen.UInt64Range(0, 1<<n-1),
	))
	properties.Property("any v >= 2^n fails the range constraints", prop.ForAll(
		func(v uint64) bool {
			return checkValue(v|1<<n, n) != nil
		},
		gen.UInt64Range(0, 1<<32-1),
	))
	properties.TestingRun(t)
}
