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

import "errors"

var (
	// ErrInfeasible is returned when no (N, M, P, Q) within the limits
	// reproduces both target frequencies exactly. Degenerate targets and
	// empty limit ranges are reported the same way.
	ErrInfeasible = errors.New("pll: infeasible configuration")

	// ErrInvalidCoefficients is returned by Verify for a tuple that breaks
	// one of the PLL constraints.
	ErrInvalidCoefficients = errors.New("pll: invalid coefficients")
)
