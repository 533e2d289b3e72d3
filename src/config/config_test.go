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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pllcalc/src/pll"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func Test_loadYAML(t *testing.T) {
	path := writeFile(t, "pll.yaml", `
hse: 8MHz
sysclk: 168000000
usb: "48 MHz"
limits:
  vco_in:
    max: 1MHz
  n:
    min: 50
    max: 432
output:
  format: go
  package: runtime
`)
	v := New()
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, pll.Targets{SysclockFreq: 168_000_000, HseFreq: 8_000_000, UsbFreq: 48_000_000}, c.Targets)
	assert.Equal(t, pll.Range{Min: 100_000_000, Max: 432_000_000}, c.Limits.Vco)
	assert.Equal(t, pll.Range{Min: 1_000_000, Max: 1_000_000}, c.Limits.VcoIn)
	require.NotNil(t, c.Limits.N)
	assert.Equal(t, pll.Range{Min: 50, Max: 432}, *c.Limits.N)
	assert.Equal(t, Output{Format: "go", Package: "runtime", Prefix: "PLL_"}, c.Output)
	assert.Equal(t, "info", c.LogLevel)
}

func Test_loadJSON(t *testing.T) {
	path := writeFile(t, "pll.json", `{"hse": 25000000, "sysclk": "168MHz", "usb": 4.8e7}`)
	v := New()
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, pll.Targets{SysclockFreq: 168_000_000, HseFreq: 25_000_000, UsbFreq: 48_000_000}, c.Targets)
	assert.Nil(t, c.Limits.N)
	assert.Equal(t, pll.DefaultLimits(), c.Limits)
}

func Test_loadEnvironment(t *testing.T) {
	t.Setenv("PLLCALC_HSE", "12MHz")
	t.Setenv("PLLCALC_SYSCLK", "120MHz")
	t.Setenv("PLLCALC_USB", "48MHz")
	t.Setenv("PLLCALC_LIMITS_VCO_MAX", "216MHz")
	t.Setenv("PLLCALC_OUTPUT_FORMAT", "c")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, pll.Targets{SysclockFreq: 120_000_000, HseFreq: 12_000_000, UsbFreq: 48_000_000}, c.Targets)
	assert.Equal(t, uint64(216_000_000), c.Limits.Vco.Max)
	assert.Equal(t, "c", c.Output.Format)
}

func Test_loadErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{"missing hse", "sysclk: 168MHz\nusb: 48MHz\n", "hse is required"},
		{"missing usb", "hse: 8MHz\nsysclk: 168MHz\n", "usb is required"},
		{"bad unit", "hse: 8 furlongs\nsysclk: 168MHz\nusb: 48MHz\n", "hse: invalid frequency"},
		{"fractional hertz", "hse: 8000000.5\nsysclk: 168MHz\nusb: 48MHz\n", "not a whole number of Hz"},
		{"non-numeric N", "hse: 8MHz\nsysclk: 168MHz\nusb: 48MHz\nlimits:\n  n:\n    min: lots\n    max: 432\n", "limits.n.min"},
		{"negative N", "hse: 8MHz\nsysclk: 168MHz\nusb: 48MHz\nlimits:\n  n:\n    min: 50\n    max: -1\n", "limits.n.max"},
		{"negative VCO limit", "hse: 8MHz\nsysclk: 168MHz\nusb: 48MHz\nlimits:\n  vco:\n    min: -100\n", "limits.vco.min"},
		{"half an N range", "hse: 8MHz\nsysclk: 168MHz\nusb: 48MHz\nlimits:\n  n:\n    min: 50\n", "must be set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			require.NoError(t, ReadFile(v, writeFile(t, "pll.yaml", tt.body)))
			_, err := Load(v)
			assert.ErrorIs(t, err, ErrConfig)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func Test_loadRejectsNonNumericNFromEnvironment(t *testing.T) {
	t.Setenv("PLLCALC_HSE", "8MHz")
	t.Setenv("PLLCALC_SYSCLK", "168MHz")
	t.Setenv("PLLCALC_USB", "48MHz")
	t.Setenv("PLLCALC_LIMITS_N_MIN", "lots")
	t.Setenv("PLLCALC_LIMITS_N_MAX", "432")

	c, err := Load(New())
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorContains(t, err, "limits.n.min")
	assert.Nil(t, c.Limits.N)
}

func Test_loadNFromEnvironment(t *testing.T) {
	t.Setenv("PLLCALC_HSE", "8MHz")
	t.Setenv("PLLCALC_SYSCLK", "168MHz")
	t.Setenv("PLLCALC_USB", "48MHz")
	t.Setenv("PLLCALC_LIMITS_N_MIN", "192")
	t.Setenv("PLLCALC_LIMITS_N_MAX", "432")

	c, err := Load(New())
	require.NoError(t, err)
	require.NotNil(t, c.Limits.N)
	assert.Equal(t, pll.Range{Min: 192, Max: 432}, *c.Limits.N)
}

func Test_readMissingFile(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrConfig)
	assert.NoError(t, ReadFile(New(), ""))
}
