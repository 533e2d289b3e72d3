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

	"github.com/go-logr/logr"

	"pllcalc/src/support"
)

// Option configures a Solver.
type Option func(*Solver)

// WithLimits replaces the default limits.
func WithLimits(l Limits) Option {
	return func(s *Solver) {
		s.limits = l
	}
}

// WithNRange restricts the multiplier N to [min, max].
func WithNRange(min, max uint64) Option {
	return func(s *Solver) {
		s.limits = s.limits.WithN(min, max)
	}
}

// WithLogger traces the search at V(1) (per Q) and V(2) (per candidate).
func WithLogger(log logr.Logger) Option {
	return func(s *Solver) {
		s.log = log
	}
}

// Solver searches for PLL coefficients under a fixed set of limits. A
// Solver is immutable once built and can be shared freely.
type Solver struct {
	limits Limits
	log    logr.Logger
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		limits: DefaultLimits(),
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Solver) Limits() Limits {
	return s.limits
}

// Solve is shorthand for NewSolver(opts...).Solve(t).
func Solve(t Targets, opts ...Option) (Coefficients, error) {
	return NewSolver(opts...).Solve(t)
}

// MustSolve is like Solve but panics if there is no solution. It is meant
// for package level initialization where a bad clock tree should stop the
// program before it starts.
func MustSolve(t Targets, opts ...Option) Coefficients {
	c, err := Solve(t, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

/*
Solve finds PLL coefficients (N, M, P, Q) such that

	HSE * N / (M * P) == SYSCLK
	HSE * N / (M * Q) == USB

with both divisions exact, the VCO and VCO input frequencies inside the
limits, and N inside the optional N range.

The search order is fixed: Q ascending from 2 to 15, then M ascending
from 2 to 63, then P in the order 2, 4, 6, 8. For each (Q, M, P) there is
exactly one candidate N = SYSCLK * M * P / HSE. The first candidate that
verifies is returned, so for a given input the answer is always the same
tuple. There are at most 14 * 62 * 4 candidates.

If nothing verifies, the error wraps ErrInfeasible. A zero target or an
empty limit range is infeasible by definition.
*/
func (s *Solver) Solve(t Targets) (Coefficients, error) {
	if err := s.check(t); err != nil {
		return Coefficients{}, err
	}
	log := s.log.WithValues("targets", t.String())

	for q := uint32(MinQ); q <= MaxQ; q++ {
		if !s.limits.vcoOutputOK(t.UsbFreq, q) {
			log.V(1).Info("skip Q, VCO out of range", "q", q, "vco", t.UsbFreq*uint64(q))
			continue
		}
		log.V(1).Info("try Q", "q", q)
		for m := uint32(MinM); m <= MaxM; m++ {
			if !s.limits.vcoInputOK(t.HseFreq, m) {
				continue
			}
			for _, p := range PValues {
				if c, ok := s.leaf(t, q, m, p); ok {
					log.V(1).Info("found", "coefficients", c.String())
					return c, nil
				}
			}
		}
	}
	return Coefficients{}, fmt.Errorf("%w: no N, M, P, Q reproduces %s within VCO %s, VCO input %s",
		ErrInfeasible, t, s.limits.Vco, s.limits.VcoIn)
}

// leaf derives N for a bound (Q, M, P) and verifies the whole tuple.
func (s *Solver) leaf(t Targets, q, m, p uint32) (Coefficients, bool) {
	n, _, ok := support.MulDiv(t.SysclockFreq, uint64(m)*uint64(p), t.HseFreq)
	if !ok || n == 0 || n > uint64(^uint32(0)) {
		return Coefficients{}, false
	}
	c := Coefficients{N: uint32(n), M: m, P: p, Q: q}
	reason := ""
	if err := c.matches(t); err != nil {
		reason = err.Error()
	} else if vco, _ := support.MulDivExact(t.HseFreq, n, uint64(m)); !s.limits.Vco.Contains(vco) {
		reason = "VCO out of range"
	} else if !s.limits.nRangeOK(n) {
		reason = "N out of range"
	}
	if reason != "" {
		if v := s.log.V(2); v.Enabled() {
			v.Info("reject", "coefficients", c.String(), "reason", reason)
		}
		return Coefficients{}, false
	}
	return c, true
}

func (s *Solver) check(t Targets) error {
	switch {
	case t.HseFreq == 0:
		return fmt.Errorf("%w: HSE frequency is zero", ErrInfeasible)
	case t.SysclockFreq == 0:
		return fmt.Errorf("%w: system clock frequency is zero", ErrInfeasible)
	case t.UsbFreq == 0:
		return fmt.Errorf("%w: USB frequency is zero", ErrInfeasible)
	}
	return s.limits.validate()
}
