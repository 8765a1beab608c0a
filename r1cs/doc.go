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

// Package r1cs implements the constraint primitives the gadgets are built
// on: wire allocation, linear combinations, multiplicative constraints and
// witness evaluation.
//
// A System is a single-proof accumulator. It is built either in Proving mode,
// where every allocation carries the genuine witness value, or in Verifying
// mode, where only the circuit topology and public inputs are known. The
// same gadget code drives both; Evaluate returns nil in Verifying mode, the
// way a verifier cannot see witness values.
//
// The only primitive constraint form is R1C: L * R = O where each side is a
// LinearCombination. Equality is the degenerate case lc * 1 = c.
//
// A System must not be shared between goroutines. Gadgets hold no state of
// their own, so independent Systems may be synthesized in parallel.
package r1cs
