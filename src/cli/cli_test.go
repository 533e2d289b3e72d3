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
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"pllcalc/src/config"
	"pllcalc/src/pll"
)

var _ = Describe("pllcalc", func() {
	var stdout, stderr *bytes.Buffer

	run := func(args ...string) error {
		stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
		root := NewRootCommand()
		root.SetArgs(args)
		root.SetOut(stdout)
		root.SetErr(stderr)
		return root.Execute()
	}

	target := []string{"--hse", "8MHz", "--sysclk", "168MHz", "--usb", "48MHz"}

	Context("solve", func() {
		It("prints the first solution in search order", func() {
			Expect(run(append([]string{"solve"}, target...)...)).To(Succeed())
			Expect(stdout.String()).To(Equal("N=168 M=4 P=2 Q=7\nVCO in 2MHz, VCO 336MHz, SYSCLK 168MHz, USB 48MHz\n"))
			Expect(stderr.String()).To(ContainSubstring("solved"))
		})

		It("honours limit overrides", func() {
			Expect(run(append([]string{"solve", "--vco-in-max", "1MHz"}, target...)...)).To(Succeed())
			Expect(stdout.String()).To(HavePrefix("N=336 M=8 P=2 Q=7\n"))
		})

		It("honours an N range", func() {
			Expect(run(append([]string{"solve", "--n-min", "200", "--n-max", "432"}, target...)...)).To(Succeed())
			Expect(stdout.String()).To(HavePrefix("N=210 M=5 P=2 Q=7\n"))
		})

		It("prints JSON", func() {
			Expect(run(append([]string{"solve", "--format", "json"}, target...)...)).To(Succeed())
			var got map[string]uint64
			Expect(json.Unmarshal(stdout.Bytes(), &got)).To(Succeed())
			Expect(got).To(HaveKeyWithValue("n", uint64(168)))
			Expect(got).To(HaveKeyWithValue("m", uint64(4)))
			Expect(got).To(HaveKeyWithValue("vco_hz", uint64(336_000_000)))
		})

		It("fails for an infeasible clock tree", func() {
			err := run("solve", "--hse", "25MHz", "--sysclk", "180MHz", "--usb", "48MHz")
			Expect(err).To(MatchError(pll.ErrInfeasible))
			Expect(stdout.String()).To(BeEmpty())
			Expect(stderr.String()).To(ContainSubstring("no PLL configuration"))
		})

		It("fails without targets", func() {
			Expect(run("solve", "--hse", "8MHz")).To(MatchError(config.ErrConfig))
		})

		It("rejects an unknown format", func() {
			Expect(run(append([]string{"solve", "--format", "xml"}, target...)...)).To(MatchError(ContainSubstring("unknown format")))
		})

		It("rejects a bad log level", func() {
			Expect(run(append([]string{"solve", "--log-level", "loud"}, target...)...)).To(MatchError(ContainSubstring("bad log level")))
		})

		It("traces the search at trace level", func() {
			Expect(run(append([]string{"solve", "--log-level", "trace"}, target...)...)).To(Succeed())
			Expect(stderr.String()).To(ContainSubstring("skip Q, VCO out of range"))
			Expect(stderr.String()).To(ContainSubstring("reject"))
		})
	})

	Context("generate", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("writes Go constants", func() {
			out := filepath.Join(dir, "pll_config.go")
			Expect(run(append([]string{"generate", "--package", "runtime", "-o", out}, target...)...)).To(Succeed())
			src, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(src)).To(ContainSubstring("package runtime\n"))
			Expect(string(src)).To(ContainSubstring("\tPLL_N = 168\n"))
			Expect(stdout.String()).To(BeEmpty())
		})

		It("writes a C header", func() {
			out := filepath.Join(dir, "pll_config.h")
			Expect(run(append([]string{"generate", "--format", "c", "-o", out}, target...)...)).To(Succeed())
			src, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(src)).To(ContainSubstring("#define PLL_Q 7u\n"))
		})

		It("reads targets from a config file", func() {
			cfg := filepath.Join(dir, "board.yaml")
			out := filepath.Join(dir, "pll_config.go")
			Expect(os.WriteFile(cfg, []byte("hse: 25MHz\nsysclk: 168MHz\nusb: 48MHz\noutput:\n  prefix: HSE25_\n"), 0o644)).To(Succeed())
			Expect(run("generate", "--config", cfg, "-o", out)).To(Succeed())
			src, err := os.ReadFile(out)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(src)).To(ContainSubstring("\tHSE25_M = 25\n"))
			Expect(string(src)).To(ContainSubstring("\tHSE25_N = 336\n"))
		})

		It("needs an output file", func() {
			Expect(run(append([]string{"generate"}, target...)...)).To(MatchError(ContainSubstring("needs an output file")))
		})

		It("leaves the old file alone when there is no solution", func() {
			out := filepath.Join(dir, "pll_config.go")
			Expect(os.WriteFile(out, []byte("old"), 0o644)).To(Succeed())
			err := run("generate", "--hse", "8MHz", "--sysclk", "180MHz", "--usb", "48MHz", "-o", out)
			Expect(err).To(MatchError(pll.ErrInfeasible))
			Expect(os.ReadFile(out)).To(Equal([]byte("old")))
		})
	})

	Context("check", func() {
		It("accepts a valid tuple that is not the first solution", func() {
			Expect(run(append([]string{"check", "-n", "336", "-m", "8", "-p", "2", "-q", "7"}, target...)...)).To(Succeed())
			Expect(stdout.String()).To(Equal("ok: N=336 M=8 P=2 Q=7\n"))
		})

		It("rejects a tuple with the wrong USB divider", func() {
			err := run(append([]string{"check", "-n", "336", "-m", "8", "-p", "2", "-q", "6"}, target...)...)
			Expect(err).To(MatchError(pll.ErrInvalidCoefficients))
			Expect(err.Error()).To(ContainSubstring("USB clock"))
		})

		It("applies the N range", func() {
			err := run(append([]string{"check", "-n", "168", "-m", "4", "-p", "2", "-q", "7", "--n-min", "192", "--n-max", "432"}, target...)...)
			Expect(err).To(MatchError(pll.ErrInvalidCoefficients))
		})

		It("requires all four coefficients", func() {
			Expect(run(append([]string{"check", "-n", "336"}, target...)...)).To(HaveOccurred())
		})
	})
})
