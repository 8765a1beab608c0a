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
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Term is a coeff * variable product inside a linear combination.
type Term struct {
	Coeff    fr.Element
	Variable Variable
}

// LinearCombination is a sum of terms, kept normalized: terms are sorted by
// wire index, at most one term per wire, no zero coefficients. Normalization
// keeps evaluation deterministic and bounds the size of combinations built
// by iterated mixing (Poseidon MDS layers).
type LinearCombination []Term

// Constant returns the linear combination holding only the constant c
// (a coefficient on the one-wire).
func Constant(c fr.Element) LinearCombination {
	if c.IsZero() {
		return nil
	}
	return LinearCombination{{Coeff: c, Variable: oneVariable}}
}

// One returns the constant linear combination 1.
func One() LinearCombination {
	var one fr.Element
	one.SetOne()
	return Constant(one)
}

// Clone returns a copy of the underlying slice.
func (l LinearCombination) Clone() LinearCombination {
	res := make(LinearCombination, len(l))
	copy(res, l)
	return res
}

// IsZero reports whether l is the empty (zero) combination.
func (l LinearCombination) IsZero() bool { return len(l) == 0 }

// Add returns l + o. Neither operand is mutated.
func (l LinearCombination) Add(o LinearCombination) LinearCombination {
	res := make(LinearCombination, 0, len(l)+len(o))
	i, j := 0, 0
	for i < len(l) && j < len(o) {
		switch {
		case l[i].Variable.index < o[j].Variable.index:
			res = append(res, l[i])
			i++
		case l[i].Variable.index > o[j].Variable.index:
			res = append(res, o[j])
			j++
		default:
			var c fr.Element
			c.Add(&l[i].Coeff, &o[j].Coeff)
			if !c.IsZero() {
				res = append(res, Term{Coeff: c, Variable: l[i].Variable})
			}
			i++
			j++
		}
	}
	res = append(res, l[i:]...)
	res = append(res, o[j:]...)
	return res
}

// Sub returns l - o.
func (l LinearCombination) Sub(o LinearCombination) LinearCombination {
	var minusOne fr.Element
	minusOne.SetOne().Neg(&minusOne)
	return l.Add(o.Scale(minusOne))
}

// Scale returns c * l.
func (l LinearCombination) Scale(c fr.Element) LinearCombination {
	if c.IsZero() {
		return nil
	}
	res := make(LinearCombination, 0, len(l))
	for _, t := range l {
		var nc fr.Element
		nc.Mul(&t.Coeff, &c)
		if !nc.IsZero() {
			res = append(res, Term{Coeff: nc, Variable: t.Variable})
		}
	}
	return res
}

// AddConstant returns l + c.
func (l LinearCombination) AddConstant(c fr.Element) LinearCombination {
	return l.Add(Constant(c))
}

// SubConstant returns l - c.
func (l LinearCombination) SubConstant(c fr.Element) LinearCombination {
	var nc fr.Element
	nc.Neg(&c)
	return l.Add(Constant(nc))
}

func (l LinearCombination) String() string {
	if len(l) == 0 {
		return "0"
	}
	var sbb strings.Builder
	for i, t := range l {
		if i > 0 {
			sbb.WriteString(" + ")
		}
		sbb.WriteString(t.Coeff.String())
		if !t.Variable.IsOne() {
			sbb.WriteString("*")
			sbb.WriteString(t.Variable.String())
		}
	}
	return sbb.String()
}
