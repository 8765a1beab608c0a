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

package r1cs

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elem(u uint64) fr.Element {
	var e fr.Element
	e.SetUint64(u)
	return e
}

func TestLinearCombinationOps(t *testing.T) {
	s := NewSystem(Proving)
	a := s.Commit(ptr(elem(3)))
	b := s.Commit(ptr(elem(5)))

	lc := a.LC().Add(b.LC().Scale(elem(2))).AddConstant(elem(7))
	v, err := s.Evaluate(lc)
	require.NoError(t, err)
	assert.Equal(t, elem(20), *v) // 3 + 2*5 + 7

	// like terms merge into a single coefficient
	doubled := a.LC().Add(a.LC())
	require.Len(t, doubled, 1)
	assert.Equal(t, elem(2), doubled[0].Coeff)

	// a - a collapses to the zero combination
	assert.True(t, a.LC().Sub(a.LC()).IsZero())

	// subtraction of a constant
	v, err = s.Evaluate(b.LC().SubConstant(elem(5)))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestMultiply(t *testing.T) {
	s := NewSystem(Proving)
	a := s.Commit(ptr(elem(3)))
	b := s.Commit(ptr(elem(5)))

	out, err := s.Multiply(a.LC(), b.LC())
	require.NoError(t, err)
	require.NotNil(t, out.Assignment)
	assert.Equal(t, elem(15), *out.Assignment)
	assert.Equal(t, 1, s.NbConstraints())
	require.NoError(t, s.IsSolved())

	// an equality constraint that does not hold
	s.ConstrainEqual(out.LC(), elem(16))
	err = s.IsSolved()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsatisfiedConstraint)
}

func TestAllocateMultiplier(t *testing.T) {
	s := NewSystem(Proving)
	l, r, o, err := s.AllocateMultiplier(ptr(elem(4)), ptr(elem(6)))
	require.NoError(t, err)
	assert.Equal(t, elem(4), *l.Assignment)
	assert.Equal(t, elem(6), *r.Assignment)
	assert.Equal(t, elem(24), *o.Assignment)
	require.NoError(t, s.IsSolved())

	_, _, _, err = s.AllocateMultiplier(nil, ptr(elem(1)))
	assert.ErrorIs(t, err, ErrMissingAssignment)
}

func TestVerifyingMode(t *testing.T) {
	s := NewSystem(Verifying)
	a := s.Commit(nil)
	assert.Nil(t, a.Assignment)

	v, err := s.Evaluate(a.LC())
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = s.Witness()
	assert.ErrorIs(t, err, ErrMissingAssignment)
	assert.ErrorIs(t, s.IsSolved(), ErrMissingAssignment)

	// public inputs are known on the verifier side
	p := s.Public(elem(42))
	require.NotNil(t, p.Assignment)
	assert.Equal(t, elem(42), *p.Assignment)
	assert.Equal(t, []fr.Element{elem(42)}, s.PublicInputs())
}

func TestSameTopologyBothModes(t *testing.T) {
	synthesize := func(mode Mode) *System {
		s := NewSystem(mode)
		var hint *fr.Element
		if mode == Proving {
			hint = ptr(elem(9))
		}
		v := s.Commit(hint)
		_, err := s.Multiply(v.LC(), v.LC())
		require.NoError(t, err)
		s.ConstrainEqual(v.LC().SubConstant(elem(9)), fr.Element{})
		return s
	}
	prover := synthesize(Proving)
	verifier := synthesize(Verifying)
	assert.Equal(t, prover.NbConstraints(), verifier.NbConstraints())
	assert.Equal(t, prover.NbWires(), verifier.NbWires())
	require.NoError(t, prover.IsSolved())
}

func TestWitness(t *testing.T) {
	s := NewSystem(Proving)
	s.Commit(ptr(elem(3)))
	s.Allocate(ptr(elem(4)))
	w, err := s.Witness()
	require.NoError(t, err)
	require.Len(t, w, 3)
	assert.Equal(t, elem(1), w[0])
	assert.Equal(t, elem(3), w[1])
	assert.Equal(t, elem(4), w[2])
}

func ptr(e fr.Element) *fr.Element { return &e }
