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

package pll

import (
	"fmt"
	"slices"

	"pllcalc/src/support"
)

// Targets are the frequencies (in Hz) a configuration has to hit exactly.
type Targets struct {
	SysclockFreq uint64
	HseFreq      uint64
	UsbFreq      uint64
}

func (t Targets) String() string {
	return fmt.Sprintf("hse=%s sysclk=%s usb=%s",
		support.FormatFrequency(t.HseFreq),
		support.FormatFrequency(t.SysclockFreq),
		support.FormatFrequency(t.UsbFreq))
}

// Coefficients hold the PLL settings:
//
//	VCO    = HSE * N / M
//	SYSCLK = VCO / P
//	USB    = VCO / Q
type Coefficients struct {
	N, M, P, Q uint32
}

func (c Coefficients) String() string {
	return fmt.Sprintf("N=%d M=%d P=%d Q=%d", c.N, c.M, c.P, c.Q)
}

func (c Coefficients) GoString() string {
	return fmt.Sprintf("pll.Coefficients{N: %d, M: %d, P: %d, Q: %d}", c.N, c.M, c.P, c.Q)
}

// VcoInFreq is the truncated frequency presented to the VCO.
func (c Coefficients) VcoInFreq(hse uint64) uint64 {
	if c.M == 0 {
		return 0
	}
	return hse / uint64(c.M)
}

// VcoFreq is the truncated VCO output frequency.
func (c Coefficients) VcoFreq(hse uint64) uint64 {
	q, _, _ := support.MulDiv(hse, uint64(c.N), uint64(c.M))
	return q
}

// SysclockFreq is the truncated system clock frequency.
func (c Coefficients) SysclockFreq(hse uint64) uint64 {
	q, _, _ := support.MulDiv(hse, uint64(c.N), uint64(c.M)*uint64(c.P))
	return q
}

// UsbFreq is the truncated USB clock frequency.
func (c Coefficients) UsbFreq(hse uint64) uint64 {
	q, _, _ := support.MulDiv(hse, uint64(c.N), uint64(c.M)*uint64(c.Q))
	return q
}

/*
Verify checks that c is a legal setting for the PLL under the limits l and
that it produces both target frequencies with no rounding at all. This is
the same acceptance test the solver applies to each candidate, so it can be
used to check hand-written constants as well as solver output.

The returned error wraps ErrInvalidCoefficients and names the first
constraint that failed.
*/
func (c Coefficients) Verify(t Targets, l Limits) error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: "+format, append([]any{ErrInvalidCoefficients, c}, args...)...)
	}
	if !support.InRange(c.M, MinM, MaxM) {
		return bad("M must be in [%d, %d]", MinM, MaxM)
	}
	if !slices.Contains(PValues[:], c.P) {
		return bad("P must be one of %v", PValues)
	}
	if !support.InRange(c.Q, MinQ, MaxQ) {
		return bad("Q must be in [%d, %d]", MinQ, MaxQ)
	}
	if c.N == 0 {
		return bad("N must be positive")
	}
	if !l.nRangeOK(uint64(c.N)) {
		return bad("N must be in %s", *l.N)
	}
	if !l.vcoInputOK(t.HseFreq, c.M) {
		return bad("VCO input %d Hz is outside %s", c.VcoInFreq(t.HseFreq), l.VcoIn)
	}
	vco, ok := support.MulDivExact(t.HseFreq, uint64(c.N), uint64(c.M))
	if !ok {
		return bad("HSE*N is not divisible by M")
	}
	if !l.Vco.Contains(vco) {
		return bad("VCO %d Hz is outside %s", vco, l.Vco)
	}
	if err := c.matches(t); err != nil {
		return bad("%s", err)
	}
	return nil
}

// matches applies the exact frequency equations shared by Verify and the
// solver's leaf evaluation.
func (c Coefficients) matches(t Targets) error {
	hse, n, m := t.HseFreq, uint64(c.N), uint64(c.M)
	sys, ok := support.MulDivExact(hse, n, m*uint64(c.P))
	if !ok || sys != t.SysclockFreq {
		return fmt.Errorf("system clock %d Hz does not match %d Hz", c.SysclockFreq(hse), t.SysclockFreq)
	}
	usb, ok := support.MulDivExact(hse, n, m*uint64(c.Q))
	if !ok || usb != t.UsbFreq {
		return fmt.Errorf("USB clock %d Hz does not match %d Hz", c.UsbFreq(hse), t.UsbFreq)
	}
	return nil
}
