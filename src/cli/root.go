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

// Package cli provides the pllcalc command line tool.
package cli

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pllcalc/src/config"
	"pllcalc/src/pll"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v   *viper.Viper
	log logr.Logger
}

// NewRootCommand builds the command tree. Each call gets its own viper
// instance so commands can be run repeatedly in one process.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New(), log: logr.Discard()}

	root := &cobra.Command{
		Use:   "pllcalc",
		Short: "Compute PLL N, M, P and Q dividers for a crystal, core clock and USB clock.",
		Long: `pllcalc searches for integer PLL coefficients that produce a system ` +
			`clock and a 48MHz style USB clock exactly from a crystal (HSE) ` +
			`frequency. The answer is deterministic so it can be generated at ` +
			`build time and compiled in as constants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if err := config.ReadFile(a.v, path); err != nil {
				return err
			}
			log, err := newLogger(a.v.GetString(config.KeyLogLevel), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: error, warn, info, debug or trace")
	flags.String("hse", "", "crystal (HSE) frequency, e.g. 8MHz")
	flags.String("sysclk", "", "system clock frequency, e.g. 168MHz")
	flags.String("usb", "", "USB clock frequency, e.g. 48MHz")
	flags.String("vco-min", "", "minimum VCO output frequency (default 100MHz)")
	flags.String("vco-max", "", "maximum VCO output frequency (default 432MHz)")
	flags.String("vco-in-min", "", "minimum VCO input frequency (default 1MHz)")
	flags.String("vco-in-max", "", "maximum VCO input frequency (default 2MHz)")
	flags.Uint64("n-min", 0, "minimum multiplier N (needs --n-max)")
	flags.Uint64("n-max", 0, "maximum multiplier N (needs --n-min)")
	mustBind(a.v, flags, map[string]string{
		config.KeyLogLevel: "log-level",
		config.KeyHse:      "hse",
		config.KeySysclk:   "sysclk",
		config.KeyUsb:      "usb",
		config.KeyVcoMin:   "vco-min",
		config.KeyVcoMax:   "vco-max",
		config.KeyVcoInMin: "vco-in-min",
		config.KeyVcoInMax: "vco-in-max",
		config.KeyNMin:     "n-min",
		config.KeyNMax:     "n-max",
	})

	root.AddCommand(newSolveCommand(a), newGenerateCommand(a), newCheckCommand(a))
	return root
}

// Execute runs the root command against os.Args.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func mustBind(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// load reads the merged configuration and builds a solver from it.
func (a *app) load() (config.Config, *pll.Solver, error) {
	c, err := config.Load(a.v)
	if err != nil {
		return config.Config{}, nil, err
	}
	a.log.V(1).Info("configuration", "targets", c.Targets.String(),
		"vco", c.Limits.Vco.String(), "vcoIn", c.Limits.VcoIn.String(), "nLimited", c.Limits.N != nil)
	s := pll.NewSolver(pll.WithLimits(c.Limits), pll.WithLogger(a.log.WithName("solver")))
	return c, s, nil
}
