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
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"

	"github.com/consensys/bulletproof-gadgets/debug"
	"github.com/consensys/bulletproof-gadgets/logger"
)

var (
	// ErrInvalidParameter signals a malformed construction-time parameter;
	// no constraint has been emitted for the failing gadget.
	ErrInvalidParameter = errors.New("invalid gadget parameter")

	// ErrStatementFalse signals that the witness does not satisfy the
	// statement the gadget encodes; the circuit that would have been emitted
	// is unsatisfiable.
	ErrStatementFalse = errors.New("statement is false for the supplied witness")

	// ErrMissingAssignment signals a wire evaluated without a value.
	ErrMissingAssignment = errors.New("missing wire assignment")

	// ErrUnsatisfiedConstraint is returned by IsSolved when the witness
	// fails a constraint.
	ErrUnsatisfiedConstraint = errors.New("unsatisfied constraint")
)

// R1C is a rank-1 constraint: L * R = O.
type R1C struct {
	L, R, O LinearCombination
}

// Mode selects what a System knows about wire values.
type Mode uint8

const (
	// Proving: every allocation carries the genuine witness value.
	Proving Mode = iota
	// Verifying: only the topology and the public inputs are known.
	Verifying
)

func (m Mode) String() string {
	if m == Proving {
		return "proving"
	}
	return "verifying"
}

// ConstraintSystem is the accumulator contract gadgets build against. It is
// the boundary with the external proving engine: an engine-side prover or
// verifier may implement it directly, and System is the reference in-memory
// implementation.
type ConstraintSystem interface {
	// Commit introduces a wire bound to an external Pedersen commitment.
	// value is the opening (nil in Verifying mode).
	Commit(value *fr.Element) AllocatedScalar

	// Public introduces a declared public-input wire; its value is known in
	// both modes.
	Public(value fr.Element) AllocatedScalar

	// Allocate introduces a low-level witness wire (nil hint in Verifying
	// mode).
	Allocate(hint *fr.Element) AllocatedScalar

	// AllocateMultiplier allocates a multiplication gate and returns its
	// three wires, with out = left * right enforced.
	AllocateMultiplier(left, right *fr.Element) (l, r, o AllocatedScalar, err error)

	// Multiply allocates only the output wire of a multiplication gate
	// between two linear combinations whose factor wires are not needed
	// individually.
	Multiply(a, b LinearCombination) (AllocatedScalar, error)

	// Constrain asserts a * b = c.
	Constrain(a, b, c LinearCombination)

	// ConstrainEqual asserts lc = c, as the degenerate constraint lc * 1 = c.
	ConstrainEqual(lc LinearCombination, c fr.Element)

	// ConstrainLC asserts a = b, as the degenerate constraint a * 1 = b.
	ConstrainLC(a, b LinearCombination)

	// Evaluate computes the value of lc against the witness. It returns nil
	// in Verifying mode. Every evaluated value fed into later logic must
	// still be bound by an emitted constraint.
	Evaluate(lc LinearCombination) (*fr.Element, error)
}

type wire struct {
	visibility Visibility
	hasValue   bool
	value      fr.Element
}

// System is the reference constraint accumulator. It owns every wire and
// constraint produced during one synthesis pass and is discarded afterwards.
// Not safe for concurrent use.
type System struct {
	mode        Mode
	wires       []wire
	constraints []R1C
	// stacks[i] is the declaration site of constraints[i]; only populated
	// under the debug build tag.
	stacks []string
	log    zerolog.Logger
}

var _ ConstraintSystem = (*System)(nil)

// NewSystem returns an empty accumulator holding only the constant one-wire.
func NewSystem(mode Mode) *System {
	var one fr.Element
	one.SetOne()
	return &System{
		mode:  mode,
		wires: []wire{{visibility: Public, hasValue: true, value: one}},
		log:   logger.Logger().With().Str("mode", mode.String()).Logger(),
	}
}

// Mode returns the synthesis mode of the system.
func (s *System) Mode() Mode { return s.mode }

func (s *System) newWire(visibility Visibility, value *fr.Element) Variable {
	w := wire{visibility: visibility}
	if (value != nil && s.mode == Proving) || visibility == Public {
		w.hasValue = true
		if value != nil {
			w.value = *value
		}
	}
	s.wires = append(s.wires, w)
	return Variable{index: uint32(len(s.wires) - 1), visibility: visibility}
}

// Commit introduces a wire bound to an external Pedersen commitment.
func (s *System) Commit(value *fr.Element) AllocatedScalar {
	v := s.newWire(Committed, value)
	return s.allocated(v)
}

// Public introduces a declared public-input wire.
func (s *System) Public(value fr.Element) AllocatedScalar {
	v := s.newWire(Public, &value)
	cpy := value
	return AllocatedScalar{Variable: v, Assignment: &cpy}
}

// Allocate introduces a low-level witness wire.
func (s *System) Allocate(hint *fr.Element) AllocatedScalar {
	v := s.newWire(Internal, hint)
	return s.allocated(v)
}

func (s *System) allocated(v Variable) AllocatedScalar {
	a := AllocatedScalar{Variable: v}
	if w := s.wires[v.index]; w.hasValue && s.mode == Proving {
		cpy := w.value
		a.Assignment = &cpy
	}
	return a
}

// AllocateMultiplier allocates a multiplication gate; out = left * right is
// enforced by an emitted constraint. In Proving mode both hints must be
// present.
func (s *System) AllocateMultiplier(left, right *fr.Element) (l, r, o AllocatedScalar, err error) {
	var out *fr.Element
	if s.mode == Proving {
		if left == nil || right == nil {
			err = fmt.Errorf("allocate multiplier: %w", ErrMissingAssignment)
			return
		}
		var p fr.Element
		p.Mul(left, right)
		out = &p
	}
	l = s.Allocate(left)
	r = s.Allocate(right)
	o = s.Allocate(out)
	s.Constrain(l.LC(), r.LC(), o.LC())
	return l, r, o, nil
}

// Multiply allocates the output wire of the product a*b and constrains it.
func (s *System) Multiply(a, b LinearCombination) (AllocatedScalar, error) {
	var out *fr.Element
	if s.mode == Proving {
		va, err := s.Evaluate(a)
		if err != nil {
			return AllocatedScalar{}, err
		}
		vb, err := s.Evaluate(b)
		if err != nil {
			return AllocatedScalar{}, err
		}
		var p fr.Element
		p.Mul(va, vb)
		out = &p
	}
	o := s.Allocate(out)
	s.Constrain(a, b, o.LC())
	return o, nil
}

// Constrain asserts a * b = c. The system takes ownership of copies of the
// operands; callers may keep mutating theirs.
func (s *System) Constrain(a, b, c LinearCombination) {
	s.constraints = append(s.constraints, R1C{L: a.Clone(), R: b.Clone(), O: c.Clone()})
	if debug.Debug {
		s.stacks = append(s.stacks, debug.Stack())
	}
}

// ConstrainEqual asserts lc = c.
func (s *System) ConstrainEqual(lc LinearCombination, c fr.Element) {
	s.Constrain(lc, One(), Constant(c))
}

// ConstrainLC asserts a = b.
func (s *System) ConstrainLC(a, b LinearCombination) {
	s.Constrain(a, One(), b)
}

// Evaluate computes the value of lc against the witness assignment. It
// returns nil (and no error) in Verifying mode.
func (s *System) Evaluate(lc LinearCombination) (*fr.Element, error) {
	if s.mode == Verifying {
		return nil, nil
	}
	var res, t fr.Element
	for _, term := range lc {
		idx := term.Variable.index
		if int(idx) >= len(s.wires) {
			return nil, fmt.Errorf("evaluate: wire %d out of range: %w", idx, ErrMissingAssignment)
		}
		w := s.wires[idx]
		if !w.hasValue {
			return nil, fmt.Errorf("evaluate: wire %d: %w", idx, ErrMissingAssignment)
		}
		t.Mul(&term.Coeff, &w.value)
		res.Add(&res, &t)
	}
	return &res, nil
}

// IsSolved checks every constraint against the witness assignment. It
// returns nil iff all constraints are satisfied. Only meaningful in Proving
// mode.
func (s *System) IsSolved() error {
	if s.mode == Verifying {
		return fmt.Errorf("is solved: verifying system holds no witness: %w", ErrMissingAssignment)
	}
	for i, c := range s.constraints {
		l, err := s.Evaluate(c.L)
		if err != nil {
			return fmt.Errorf("constraint #%d: %w", i, err)
		}
		r, err := s.Evaluate(c.R)
		if err != nil {
			return fmt.Errorf("constraint #%d: %w", i, err)
		}
		o, err := s.Evaluate(c.O)
		if err != nil {
			return fmt.Errorf("constraint #%d: %w", i, err)
		}
		var p fr.Element
		p.Mul(l, r)
		if !p.Equal(o) {
			s.log.Debug().Int("constraint", i).
				Str("L", c.L.String()).
				Str("R", c.R.String()).
				Str("O", c.O.String()).
				Msg("constraint not satisfied")
			if i < len(s.stacks) {
				return fmt.Errorf("constraint #%d (%s) * (%s) != (%s) declared at\n%s%w", i, c.L, c.R, c.O, s.stacks[i], ErrUnsatisfiedConstraint)
			}
			return fmt.Errorf("constraint #%d (%s) * (%s) != (%s): %w", i, c.L, c.R, c.O, ErrUnsatisfiedConstraint)
		}
	}
	return nil
}

// NbConstraints returns the number of accumulated constraints.
func (s *System) NbConstraints() int { return len(s.constraints) }

// NbWires returns the number of wires, including the constant one-wire.
func (s *System) NbWires() int { return len(s.wires) }

// Constraints returns the accumulated constraints. The slice is shared with
// the system; treat it as read-only.
func (s *System) Constraints() []R1C { return s.constraints }

// PublicInputs returns the values of the declared public wires, in
// allocation order, excluding the constant one-wire.
func (s *System) PublicInputs() []fr.Element {
	var res []fr.Element
	for i := 1; i < len(s.wires); i++ {
		if s.wires[i].visibility == Public {
			res = append(res, s.wires[i].value)
		}
	}
	return res
}

// Witness returns the full wire assignment, including the constant one-wire.
// Only available in Proving mode.
func (s *System) Witness() ([]fr.Element, error) {
	if s.mode == Verifying {
		return nil, fmt.Errorf("witness: verifying system holds no witness: %w", ErrMissingAssignment)
	}
	res := make([]fr.Element, len(s.wires))
	for i, w := range s.wires {
		if !w.hasValue {
			return nil, fmt.Errorf("witness: wire %d: %w", i, ErrMissingAssignment)
		}
		res[i] = w.value
	}
	return res, nil
}
