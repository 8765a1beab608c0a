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

// Package bulletproofgadgets provides reusable zero-knowledge gadgets for
// Bulletproofs-style rank-1 constraint systems (R1CS).
//
// A gadget encodes one mathematical statement (range membership, inequality,
// set membership or non-membership, hash preimage knowledge, Merkle path
// knowledge) as a set of multiplicative constraints over a prime scalar
// field. The proving engine consuming those constraints (commitments,
// inner-product argument, transcript) is external to this module; the r1cs
// package defines the accumulator contract both sides agree on.
//
// Gadgets live under std/, mirroring their construction layers:
//   - std/rangecheck: bit-decomposition range checks
//   - std/math/cmp: non-zero and not-equal assertions
//   - std/set: set membership (two styles) and non-membership
//   - std/hash/mimc, std/hash/poseidon: arithmetized permutations
//   - std/accumulator/smt: sparse Merkle tree membership
package bulletproofgadgets

import "github.com/blang/semver/v4"

// Version of the library. Serialized constraint systems embed it; decoding
// rejects payloads written by a different major version.
var Version = semver.MustParse("0.1.0")
