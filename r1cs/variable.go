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
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Visibility characterizes a wire.
type Visibility uint8

const (
	// Public wires carry values known to both prover and verifier (declared
	// public inputs, and the constant one-wire).
	Public Visibility = iota + 1
	// Committed wires are bound to an external Pedersen commitment supplied
	// by the caller.
	Committed
	// Internal wires are low-level witness values introduced by gadgets.
	Internal
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Committed:
		return "committed"
	case Internal:
		return "internal"
	default:
		return "unset"
	}
}

// Variable is an opaque handle referencing a wire in a constraint system. It
// carries no value; the witness assignment lives in the System.
type Variable struct {
	index      uint32
	visibility Visibility
}

// WireID returns the index of the wire in its constraint system.
func (v Variable) WireID() int { return int(v.index) }

// Visibility returns the wire visibility.
func (v Variable) Visibility() Visibility { return v.visibility }

// IsOne reports whether v is the constant one-wire.
func (v Variable) IsOne() bool { return v.index == 0 }

func (v Variable) String() string {
	if v.IsOne() {
		return "1"
	}
	return fmt.Sprintf("%s[%d]", v.visibility, v.index)
}

// LC returns the linear combination 1 * v.
func (v Variable) LC() LinearCombination {
	var one fr.Element
	one.SetOne()
	return LinearCombination{{Coeff: one, Variable: v}}
}

// oneVariable is wire 0 of every System; its assignment is the constant 1.
// Constant terms of linear combinations are coefficients on this wire.
var oneVariable = Variable{index: 0, visibility: Public}

// AllocatedScalar pairs a wire with its assignment. In Verifying mode the
// assignment is nil.
type AllocatedScalar struct {
	Variable   Variable
	Assignment *fr.Element
}

// LC returns the linear combination 1 * a.Variable.
func (a AllocatedScalar) LC() LinearCombination { return a.Variable.LC() }
