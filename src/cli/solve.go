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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pllcalc/src/config"
	"pllcalc/src/emit"
)

func addOutputFlags(cmd *cobra.Command, format string) {
	flags := cmd.Flags()
	flags.String("format", format, fmt.Sprintf("output format, one of %v", emit.Formats))
	flags.String("package", "clock", "package name for Go output")
	flags.String("prefix", "PLL_", "constant name prefix for Go and C output")
	flags.StringP("output", "o", "", "write to this file instead of stdout")
}

// bindOutputFlags ties the output keys to the flags of the command that is
// actually running. solve and generate share the keys but not the default
// format, so this can't happen when the tree is built.
func (a *app) bindOutputFlags(cmd *cobra.Command, format string) {
	a.v.SetDefault(config.KeyFormat, format)
	mustBind(a.v, cmd.Flags(), map[string]string{
		config.KeyFormat:  "format",
		config.KeyPackage: "package",
		config.KeyPrefix:  "prefix",
		config.KeyFile:    "output",
	})
}

func newSolveCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find N, M, P and Q and print them.",
		Example: `  pllcalc solve --hse 8MHz --sysclk 168MHz --usb 48MHz
  pllcalc solve --config board.yaml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.bindOutputFlags(cmd, string(emit.Text))
			return a.solve(cmd.OutOrStdout(), false)
		},
	}
	addOutputFlags(cmd, string(emit.Text))
	return cmd
}

func newGenerateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Find N, M, P and Q and write them as a source file.",
		Long: `generate writes the coefficients as Go constants (default) or a C ` +
			`header. It is meant to be run from go:generate or a build script; ` +
			`an infeasible clock tree fails the build and leaves any existing ` +
			`output file untouched.`,
		Example: `  //go:generate pllcalc generate --hse 8MHz --sysclk 168MHz --usb 48MHz --package runtime -o pll_config.go`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.bindOutputFlags(cmd, string(emit.Go))
			return a.solve(cmd.OutOrStdout(), true)
		},
	}
	addOutputFlags(cmd, string(emit.Go))
	return cmd
}

func (a *app) solve(stdout io.Writer, needFile bool) error {
	c, s, err := a.load()
	if err != nil {
		return err
	}
	format, err := emit.ParseFormat(c.Output.Format)
	if err != nil {
		return err
	}
	if needFile && c.Output.File == "" {
		return errors.New("generate needs an output file (-o)")
	}

	coeffs, err := s.Solve(c.Targets)
	if err != nil {
		a.log.Error(err, "no PLL configuration", "targets", c.Targets.String())
		return err
	}
	a.log.Info("solved", "targets", c.Targets.String(), "coefficients", coeffs.String())

	var buf bytes.Buffer
	err = emit.Render(&buf, format, emit.Report{
		Targets:      c.Targets,
		Coefficients: coeffs,
		Package:      c.Output.Package,
		Prefix:       c.Output.Prefix,
	})
	if err != nil {
		return err
	}
	if c.Output.File == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(c.Output.File, buf.Bytes(), 0o644); err != nil {
		return err
	}
	a.log.V(1).Info("wrote", "file", c.Output.File, "format", string(format))
	return nil
}
