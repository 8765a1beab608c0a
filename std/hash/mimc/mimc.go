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

// Package mimc provides the MiMC permutation, natively and as a circuit
// gadget, with the cube S-box round function
//
//	x_{i+1} = (x_i + k + c_i)^3
//
// finishing with x_R + k as the digest. Each round costs exactly two
// multiplicative constraints in circuit form.
package mimc

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"

	"github.com/consensys/bulletproof-gadgets/r1cs"
)

// DefaultSeed is the seed of the default round constants.
const DefaultSeed = "bulletproof-gadgets-mimc"

// DefaultRounds is the round count of the default instance.
const DefaultRounds = 91

// Params holds one MiMC instance: the round count and the public round
// constants. Both are external, published parameters; instances with
// different parameters coexist safely.
type Params struct {
	Constants []fr.Element
}

// NewParams derives rounds constants from a seed: a Keccak256 chain over the
// seed, each digest reduced into the field. The derivation is deterministic,
// so both sides of a proof reconstruct identical constants from (seed,
// rounds).
func NewParams(seed string, rounds int) (Params, error) {
	if rounds < 1 {
		return Params{}, fmt.Errorf("mimc: round count %d < 1: %w", rounds, r1cs.ErrInvalidParameter)
	}
	constants := make([]fr.Element, rounds)
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(seed))
	rnd := h.Sum(nil)
	for i := 0; i < rounds; i++ {
		h.Reset()
		_, _ = h.Write(rnd)
		rnd = h.Sum(nil)
		constants[i].SetBytes(rnd)
	}
	return Params{Constants: constants}, nil
}

// Validate checks caller-supplied parameters.
func (p Params) Validate() error {
	if len(p.Constants) == 0 {
		return fmt.Errorf("mimc: no round constants: %w", r1cs.ErrInvalidParameter)
	}
	return nil
}

// Rounds returns the round count of the instance.
func (p Params) Rounds() int { return len(p.Constants) }

// Encrypt runs the permutation natively: R cube rounds of x under key k,
// returning x_R + k.
func Encrypt(p Params, k, x fr.Element) fr.Element {
	var t, t2 fr.Element
	for _, c := range p.Constants {
		t.Add(&x, &k).Add(&t, &c)
		t2.Square(&t)
		x.Mul(&t2, &t)
	}
	x.Add(&x, &k)
	return x
}

// Compress is the 2:1 compression used by the Merkle gadget: the right input
// encrypted under the left input as key.
func Compress(p Params, left, right fr.Element) fr.Element {
	return Encrypt(p, left, right)
}

// EncryptConstraints arithmetizes Encrypt over linear combinations: per
// round, the cube is built from two chained multiplication gates
// (t = s*s, out = t*s with s = x + k + c_i).
func EncryptConstraints(cs r1cs.ConstraintSystem, p Params, key, x r1cs.LinearCombination) (r1cs.LinearCombination, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i, c := range p.Constants {
		s := x.Add(key).AddConstant(c)
		sq, err := cs.Multiply(s, s)
		if err != nil {
			return nil, fmt.Errorf("mimc: round %d: %w", i, err)
		}
		cube, err := cs.Multiply(sq.LC(), s)
		if err != nil {
			return nil, fmt.Errorf("mimc: round %d: %w", i, err)
		}
		x = cube.LC()
	}
	return x.Add(key), nil
}

// CompressConstraints is the circuit form of Compress.
func CompressConstraints(cs r1cs.ConstraintSystem, p Params, left, right r1cs.LinearCombination) (r1cs.LinearCombination, error) {
	return EncryptConstraints(cs, p, left, right)
}

// AssertPreimage proves knowledge of a preimage of the public digest: it
// constrains the full round chain over the committed preimage and pins the
// final wire to digest, declared as a public input. An inconsistent preimage
// hint does not fail here; it surfaces as a verification failure downstream.
func AssertPreimage(cs r1cs.ConstraintSystem, p Params, preimage r1cs.AllocatedScalar, key, digest fr.Element) error {
	out, err := EncryptConstraints(cs, p, r1cs.Constant(key), preimage.LC())
	if err != nil {
		return err
	}
	pub := cs.Public(digest)
	cs.ConstrainLC(out, pub.LC())
	return nil
}
