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

	"pllcalc/src/support"
)

// Divider ranges supported by the PLL hardware.
const (
	MinM = 2
	MaxM = 63
	MinQ = 2
	MaxQ = 15
)

// PValues lists the system clock dividers in search order.
var PValues = [...]uint32{2, 4, 6, 8}

// Range is an inclusive interval of integers.
type Range struct {
	Min, Max uint64
}

func (r Range) Contains(v uint64) bool {
	return support.InRange(v, r.Min, r.Max)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// Limits describes the operating envelope of the PLL. N is optional; a nil
// N leaves the multiplier unrestricted.
type Limits struct {
	Vco   Range  // VCO output frequency, Hz
	VcoIn Range  // VCO input frequency (after the M divider), Hz
	N     *Range // multiplier range
}

// DefaultLimits returns the envelope of an STM32F4 main PLL: VCO output
// between 100 and 432 MHz and VCO input between 1 and 2 MHz.
func DefaultLimits() Limits {
	return Limits{
		Vco:   Range{Min: 100 * support.MHz, Max: 432 * support.MHz},
		VcoIn: Range{Min: 1 * support.MHz, Max: 2 * support.MHz},
	}
}

// WithN returns a copy of l restricted to min <= N <= max.
func (l Limits) WithN(min, max uint64) Limits {
	l.N = &Range{Min: min, Max: max}
	return l
}

func (l Limits) validate() error {
	if l.Vco.Min > l.Vco.Max {
		return fmt.Errorf("%w: VCO range %s is empty", ErrInfeasible, l.Vco)
	}
	if l.VcoIn.Min > l.VcoIn.Max {
		return fmt.Errorf("%w: VCO input range %s is empty", ErrInfeasible, l.VcoIn)
	}
	if l.N != nil && l.N.Min > l.N.Max {
		return fmt.Errorf("%w: N range %s is empty", ErrInfeasible, *l.N)
	}
	return nil
}

// vcoInputOK checks the (truncated) frequency after the M divider.
func (l Limits) vcoInputOK(hse uint64, m uint32) bool {
	return l.VcoIn.Contains(hse / uint64(m))
}

// vcoOutputOK checks the VCO frequency implied by a USB divider of q. Any
// tuple that passes exact verification has a VCO of exactly usb*q, so this
// prune never drops a valid answer.
func (l Limits) vcoOutputOK(usb uint64, q uint32) bool {
	vco, ok := support.MulChecked(usb, uint64(q))
	return ok && l.Vco.Contains(vco)
}

func (l Limits) nRangeOK(n uint64) bool {
	return l.N == nil || l.N.Contains(n)
}
