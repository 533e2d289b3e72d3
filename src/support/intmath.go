/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package support

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// InRange reports whether lo <= v <= hi.
func InRange[T constraints.Integer](v, lo, hi T) bool {
	return lo <= v && v <= hi
}

/*
MulDiv computes a*b/den with a 128 bit intermediate product so that the
multiplication can't silently wrap. It returns the truncated quotient and
the remainder. If den is zero or the quotient doesn't fit in 64 bits, ok is
false.

Frequency checks in this package all have the shape f0 * n / (m * p), and
with f0 in the tens of MHz and n in the hundreds the product is nowhere
near 2^64. User supplied targets are not so polite, though, so we never
let the product wrap.
*/
func MulDiv(a, b, den uint64) (quo, rem uint64, ok bool) {
	if den == 0 {
		return 0, 0, false
	}
	hi, lo := bits.Mul64(a, b)
	if den <= hi {
		return 0, 0, false
	}
	quo, rem = bits.Div64(hi, lo, den)
	return quo, rem, true
}

// MulDivExact returns a*b/den only if the division leaves no remainder.
func MulDivExact(a, b, den uint64) (uint64, bool) {
	q, r, ok := MulDiv(a, b, den)
	if !ok || r != 0 {
		return 0, false
	}
	return q, true
}

// MulChecked returns a*b, or false if the product overflows 64 bits.
func MulChecked(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}
