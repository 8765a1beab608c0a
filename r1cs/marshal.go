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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/blang/semver/v4"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/sync/errgroup"

	bulletproofgadgets "github.com/consensys/bulletproof-gadgets"
	"github.com/consensys/bulletproof-gadgets/internal/ioutils"
)

// headerLen is the size of the fixed binary header: two uint64 section
// lengths (calldata, body).
const headerLen = 16

// serializedSystem is the cbor body of a serialized constraint system. Wire
// topology and term coefficients live here; the wire-id streams are packed
// separately in the binary calldata section. Witness values are never
// serialized.
type serializedSystem struct {
	Version      string   `cbor:"version"`
	NbWires      uint64   `cbor:"nbWires"`
	Visibilities []uint8  `cbor:"visibilities"`
	PublicValues [][]byte `cbor:"publicValues"`
	Coeffs       [][]byte `cbor:"coeffs"`
}

// ToBytes serializes the constraint topology and the declared public inputs
// for the external proving engine. The witness assignment is prover-local
// and is not included.
func (s *System) ToBytes() ([]byte, error) {
	// two independent sections, produced in parallel: the intcomp-packed
	// wire-id calldata and the cbor body.
	var calldata []byte
	var g errgroup.Group
	g.Go(func() error {
		var err error
		calldata, err = s.calldataToBytes()
		return err
	})

	body, err := s.bodyToBytes()
	if err != nil {
		return nil, err
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	buf := make([]byte, headerLen, headerLen+len(calldata)+len(body))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(len(calldata)))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(body)))
	buf = append(buf, calldata...)
	buf = append(buf, body...)

	s.log.Debug().
		Int("nbConstraints", s.NbConstraints()).
		Int("nbWires", s.NbWires()).
		Int("nbBytes", len(buf)).
		Msg("serialized constraint system")
	return buf, nil
}

func (s *System) calldataToBytes() ([]byte, error) {
	ids := make([]uint32, 0, 1+4*len(s.constraints))
	ids = append(ids, uint32(len(s.constraints)))
	for _, c := range s.constraints {
		ids = append(ids, uint32(len(c.L)), uint32(len(c.R)), uint32(len(c.O)))
		for _, lc := range [3]LinearCombination{c.L, c.R, c.O} {
			for _, t := range lc {
				ids = append(ids, t.Variable.index)
			}
		}
	}
	var buf bytes.Buffer
	if _, err := ioutils.CompressAndWriteUints32(&buf, ids, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *System) bodyToBytes() ([]byte, error) {
	body := serializedSystem{
		Version:      bulletproofgadgets.Version.String(),
		NbWires:      uint64(len(s.wires)),
		Visibilities: make([]uint8, len(s.wires)),
	}
	for i, w := range s.wires {
		body.Visibilities[i] = uint8(w.visibility)
		if i > 0 && w.visibility == Public {
			b := w.value.Bytes()
			body.PublicValues = append(body.PublicValues, b[:])
		}
	}
	for _, c := range s.constraints {
		for _, lc := range [3]LinearCombination{c.L, c.R, c.O} {
			for _, t := range lc {
				b := t.Coeff.Bytes()
				body.Coeffs = append(body.Coeffs, b[:])
			}
		}
	}
	return cbor.Marshal(body)
}

// FromBytes deserializes a constraint system produced by ToBytes. The result
// is a Verifying-mode system: topology and public inputs only.
func FromBytes(data []byte) (*System, error) {
	if len(data) < headerLen {
		return nil, errors.New("invalid data length")
	}
	calldataLen := binary.LittleEndian.Uint64(data[0:8])
	bodyLen := binary.LittleEndian.Uint64(data[8:16])
	if uint64(len(data)) < headerLen+calldataLen+bodyLen {
		return nil, errors.New("invalid data length")
	}

	var ids []uint32
	var body serializedSystem
	var g errgroup.Group
	g.Go(func() error {
		var err error
		_, ids, err = ioutils.ReadAndDecompressUints32(bytes.NewReader(data[headerLen : headerLen+calldataLen]))
		return err
	})
	g.Go(func() error {
		return cbor.Unmarshal(data[headerLen+calldataLen:headerLen+calldataLen+bodyLen], &body)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v, err := semver.Parse(body.Version)
	if err != nil {
		return nil, fmt.Errorf("parse serialized version %q: %w", body.Version, err)
	}
	if v.Major != bulletproofgadgets.Version.Major {
		return nil, fmt.Errorf("incompatible serialized version %s (running %s)", v, bulletproofgadgets.Version)
	}

	return rebuild(ids, body)
}

func rebuild(ids []uint32, body serializedSystem) (*System, error) {
	if uint64(len(body.Visibilities)) != body.NbWires || body.NbWires == 0 {
		return nil, errors.New("malformed wire visibilities")
	}
	s := NewSystem(Verifying)
	publicIdx := 0
	for i := uint64(1); i < body.NbWires; i++ {
		vis := Visibility(body.Visibilities[i])
		switch vis {
		case Public:
			if publicIdx >= len(body.PublicValues) {
				return nil, errors.New("missing public input value")
			}
			var v fr.Element
			if err := v.SetBytesCanonical(body.PublicValues[publicIdx]); err != nil {
				return nil, fmt.Errorf("public input %d: %w", publicIdx, err)
			}
			publicIdx++
			s.Public(v)
		case Committed:
			s.Commit(nil)
		case Internal:
			s.Allocate(nil)
		default:
			return nil, fmt.Errorf("unknown wire visibility %d", vis)
		}
	}

	// rebuild constraints, zipping the wire-id stream with the coefficients
	if len(ids) == 0 {
		return nil, errors.New("empty calldata")
	}
	nbConstraints := int(ids[0])
	pos, coeffPos := 1, 0
	nextLC := func(n int) (LinearCombination, error) {
		if pos+n > len(ids) || coeffPos+n > len(body.Coeffs) {
			return nil, errors.New("truncated calldata")
		}
		lc := make(LinearCombination, 0, n)
		for k := 0; k < n; k++ {
			wireID := ids[pos]
			if uint64(wireID) >= body.NbWires {
				return nil, fmt.Errorf("wire %d out of range", wireID)
			}
			var c fr.Element
			if err := c.SetBytesCanonical(body.Coeffs[coeffPos]); err != nil {
				return nil, fmt.Errorf("coefficient %d: %w", coeffPos, err)
			}
			lc = append(lc, Term{
				Coeff:    c,
				Variable: Variable{index: wireID, visibility: Visibility(body.Visibilities[wireID])},
			})
			pos++
			coeffPos++
		}
		return lc, nil
	}
	for i := 0; i < nbConstraints; i++ {
		if pos+3 > len(ids) {
			return nil, errors.New("truncated calldata")
		}
		lenL, lenR, lenO := int(ids[pos]), int(ids[pos+1]), int(ids[pos+2])
		pos += 3
		var c R1C
		var err error
		if c.L, err = nextLC(lenL); err != nil {
			return nil, err
		}
		if c.R, err = nextLC(lenR); err != nil {
			return nil, err
		}
		if c.O, err = nextLC(lenO); err != nil {
			return nil, err
		}
		s.constraints = append(s.constraints, c)
	}
	return s, nil
}

// WriteTo implements io.WriterTo.
func (s *System) WriteTo(w io.Writer) (int64, error) {
	data, err := s.ToBytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadSystemFrom reads a serialized system from r.
func ReadSystemFrom(r io.Reader) (*System, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromBytes(data)
}
