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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pllcalc/src/pll"
)

func newCheckCommand(a *app) *cobra.Command {
	var c pll.Coefficients
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify hand-picked N, M, P and Q against the targets and limits.",
		Example: `  pllcalc check --hse 8MHz --sysclk 168MHz --usb 48MHz -n 336 -m 8 -p 2 -q 7`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, s, err := a.load()
			if err != nil {
				return err
			}
			if err := c.Verify(cfg.Targets, s.Limits()); err != nil {
				return err
			}
			a.log.V(1).Info("verified", "coefficients", c.String())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", c)
			return err
		},
	}
	flags := cmd.Flags()
	flags.Uint32VarP(&c.N, "n", "n", 0, "VCO multiplier N")
	flags.Uint32VarP(&c.M, "m", "m", 0, "input divider M")
	flags.Uint32VarP(&c.P, "p", "p", 0, "system clock divider P")
	flags.Uint32VarP(&c.Q, "q", "q", 0, "USB clock divider Q")
	for _, name := range []string{"n", "m", "p", "q"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cmd
}
