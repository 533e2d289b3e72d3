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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Frequency units in Hz.
const (
	Hz  uint64 = 1
	KHz uint64 = 1_000
	MHz uint64 = 1_000_000
	GHz uint64 = 1_000_000_000
)

var ErrBadFrequency = errors.New("invalid frequency")

/*
ParseFrequency converts strings like "8000000", "8MHz", "32.768 kHz" or
"1_000_000" into an integer number of hertz.

A fractional mantissa is allowed only if the result is a whole number of
hertz, so "32.768kHz" is fine but "1.5Hz" is an error. We do the scaling
in decimal digits rather than floating point so "0.1GHz" is exactly 100MHz.
*/
func ParseFrequency(s string) (uint64, error) {
	in := s
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", ""))
	unit := Hz
	lower := strings.ToLower(s)
	for _, u := range []struct {
		suffix string
		scale  uint64
	}{{"ghz", GHz}, {"mhz", MHz}, {"khz", KHz}, {"hz", Hz}} {
		if strings.HasSuffix(lower, u.suffix) {
			unit = u.scale
			s = strings.TrimSpace(s[:len(s)-len(u.suffix)])
			break
		}
	}
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrBadFrequency, in)
	}

	whole, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")
	digits := whole + frac
	for range frac {
		if unit%10 != 0 {
			return 0, fmt.Errorf("%w: %q is not a whole number of Hz", ErrBadFrequency, in)
		}
		unit /= 10
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadFrequency, in)
	}
	r, ok := MulChecked(v, unit)
	if !ok {
		return 0, fmt.Errorf("%w: %q overflows", ErrBadFrequency, in)
	}
	return r, nil
}

// FormatFrequency renders f with the largest unit that divides it evenly.
func FormatFrequency(f uint64) string {
	switch {
	case f == 0:
		return "0Hz"
	case f%GHz == 0:
		return strconv.FormatUint(f/GHz, 10) + "GHz"
	case f%MHz == 0:
		return strconv.FormatUint(f/MHz, 10) + "MHz"
	case f%KHz == 0:
		return strconv.FormatUint(f/KHz, 10) + "kHz"
	}
	return strconv.FormatUint(f, 10) + "Hz"
}
