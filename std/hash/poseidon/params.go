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

package poseidon

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"

	"github.com/consensys/bulletproof-gadgets/r1cs"
)

// defaultSeed seeds the round-key derivation of NewParams.
const defaultSeed = "bulletproof-gadgets-poseidon"

// Params holds one Poseidon instance. All fields are fixed, published
// construction parameters; none are witness data. Instances with different
// parameter sets (test vs. production) coexist safely.
type Params struct {
	Width               int
	FullRoundsBeginning int
	FullRoundsEnd       int
	PartialRounds       int
	// RoundKeys has Width keys per round, consumed in order.
	RoundKeys []fr.Element
	// MDS is the Width x Width mixing matrix.
	MDS [][]fr.Element
}

// TotalRounds returns the number of rounds of the instance.
func (p Params) TotalRounds() int {
	return p.FullRoundsBeginning + p.PartialRounds + p.FullRoundsEnd
}

// NewParams builds a parameter set with deterministically derived round keys
// (a Keccak256 chain, reduced into the field) and a Cauchy MDS matrix
// 1/(x_i + y_j) with x_i = i, y_j = width + j, which is invertible since the
// x_i and y_j are pairwise distinct and no sum hits zero. Production
// deployments supply vetted parameters directly in the struct instead.
func NewParams(width, fullRoundsBeginning, fullRoundsEnd, partialRounds int) (Params, error) {
	p := Params{
		Width:               width,
		FullRoundsBeginning: fullRoundsBeginning,
		FullRoundsEnd:       fullRoundsEnd,
		PartialRounds:       partialRounds,
	}
	if err := p.validateShape(); err != nil {
		return Params{}, err
	}

	nbKeys := width * p.TotalRounds()
	p.RoundKeys = make([]fr.Element, nbKeys)
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(defaultSeed))
	rnd := h.Sum(nil)
	for i := 0; i < nbKeys; i++ {
		h.Reset()
		_, _ = h.Write(rnd)
		rnd = h.Sum(nil)
		p.RoundKeys[i].SetBytes(rnd)
	}

	p.MDS = make([][]fr.Element, width)
	for i := 0; i < width; i++ {
		p.MDS[i] = make([]fr.Element, width)
		for j := 0; j < width; j++ {
			var sum fr.Element
			sum.SetUint64(uint64(i + width + j))
			p.MDS[i][j].Inverse(&sum)
		}
	}
	return p, nil
}

func (p Params) validateShape() error {
	if p.Width < 2 {
		return fmt.Errorf("poseidon: width %d < 2: %w", p.Width, r1cs.ErrInvalidParameter)
	}
	if p.FullRoundsBeginning < 1 || p.FullRoundsEnd < 1 || p.PartialRounds < 0 {
		return fmt.Errorf("poseidon: round counts (%d, %d, %d) malformed: %w",
			p.FullRoundsBeginning, p.PartialRounds, p.FullRoundsEnd, r1cs.ErrInvalidParameter)
	}
	return nil
}

// Validate checks a caller-supplied parameter set.
func (p Params) Validate() error {
	if err := p.validateShape(); err != nil {
		return err
	}
	if want := p.Width * p.TotalRounds(); len(p.RoundKeys) != want {
		return fmt.Errorf("poseidon: %d round keys, want %d: %w", len(p.RoundKeys), want, r1cs.ErrInvalidParameter)
	}
	if len(p.MDS) != p.Width {
		return fmt.Errorf("poseidon: MDS has %d rows, want %d: %w", len(p.MDS), p.Width, r1cs.ErrInvalidParameter)
	}
	for i, row := range p.MDS {
		if len(row) != p.Width {
			return fmt.Errorf("poseidon: MDS row %d has %d entries, want %d: %w", i, len(row), p.Width, r1cs.ErrInvalidParameter)
		}
	}
	return nil
}
