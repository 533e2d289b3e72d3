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
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"pllcalc/src/pll"
	"pllcalc/src/support"
)

// Configuration keys. Flags use the same names with dots replaced by
// dashes, environment variables are upper case with a PLLCALC_ prefix.
const (
	KeyHse      = "hse"
	KeySysclk   = "sysclk"
	KeyUsb      = "usb"
	KeyVcoMin   = "limits.vco.min"
	KeyVcoMax   = "limits.vco.max"
	KeyVcoInMin = "limits.vco_in.min"
	KeyVcoInMax = "limits.vco_in.max"
	KeyNMin     = "limits.n.min"
	KeyNMax     = "limits.n.max"
	KeyFormat   = "output.format"
	KeyPackage  = "output.package"
	KeyPrefix   = "output.prefix"
	KeyFile     = "output.file"
	KeyLogLevel = "log.level"

	EnvPrefix = "PLLCALC"
)

var ErrConfig = errors.New("config")

// Output controls how a solution is rendered.
type Output struct {
	Format  string
	Package string
	Prefix  string
	File    string
}

// Config is everything a solve needs, already converted to integer Hz.
type Config struct {
	Targets  pll.Targets
	Limits   pll.Limits
	Output   Output
	LogLevel string
}

// New returns a viper instance with defaults and environment binding set
// up. Callers add a config file and flags on top.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	l := pll.DefaultLimits()
	v.SetDefault(KeyVcoMin, l.Vco.Min)
	v.SetDefault(KeyVcoMax, l.Vco.Max)
	v.SetDefault(KeyVcoInMin, l.VcoIn.Min)
	v.SetDefault(KeyVcoInMax, l.VcoIn.Max)
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyPackage, "clock")
	v.SetDefault(KeyPrefix, "PLL_")
	v.SetDefault(KeyLogLevel, "info")
}

// ReadFile merges a config file (yaml, json or toml by extension) into v.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrConfig, path, err)
	}
	return nil
}

// Load pulls a Config out of v. Frequencies may be plain integers or
// strings such as "8MHz". The N range is only applied when both ends are
// given.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	var err error
	freq := func(key string) uint64 {
		if err != nil {
			return 0
		}
		var f uint64
		f, err = frequency(v, key)
		return f
	}

	c.Targets = pll.Targets{
		HseFreq:      freq(KeyHse),
		SysclockFreq: freq(KeySysclk),
		UsbFreq:      freq(KeyUsb),
	}
	c.Limits = pll.Limits{
		Vco:   pll.Range{Min: freq(KeyVcoMin), Max: freq(KeyVcoMax)},
		VcoIn: pll.Range{Min: freq(KeyVcoInMin), Max: freq(KeyVcoInMax)},
	}
	if err != nil {
		return Config{}, err
	}
	switch hasMin, hasMax := v.IsSet(KeyNMin), v.IsSet(KeyNMax); {
	case hasMin && hasMax:
		nMin, err := count(v, KeyNMin)
		if err != nil {
			return Config{}, err
		}
		nMax, err := count(v, KeyNMax)
		if err != nil {
			return Config{}, err
		}
		c.Limits = c.Limits.WithN(nMin, nMax)
	case hasMin || hasMax:
		return Config{}, fmt.Errorf("%w: %s and %s must be set together", ErrConfig, KeyNMin, KeyNMax)
	}

	c.Output = Output{
		Format:  v.GetString(KeyFormat),
		Package: v.GetString(KeyPackage),
		Prefix:  v.GetString(KeyPrefix),
		File:    v.GetString(KeyFile),
	}
	c.LogLevel = v.GetString(KeyLogLevel)

	for _, req := range []struct {
		key string
		f   uint64
	}{{KeyHse, c.Targets.HseFreq}, {KeySysclk, c.Targets.SysclockFreq}, {KeyUsb, c.Targets.UsbFreq}} {
		if req.f == 0 {
			return Config{}, fmt.Errorf("%w: %s is required", ErrConfig, req.key)
		}
	}
	return c, nil
}

// frequency reads key as an integer or a string with a unit suffix.
func frequency(v *viper.Viper, key string) (uint64, error) {
	if !v.IsSet(key) {
		return 0, nil
	}
	switch raw := v.Get(key).(type) {
	case string:
		f, err := support.ParseFrequency(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrConfig, key, err)
		}
		return f, nil
	case int, int64, int32, uint, uint64, uint32:
		return count(v, key)
	case float64:
		if raw < 0 || raw != float64(uint64(raw)) {
			return 0, fmt.Errorf("%w: %s: %v is not a whole number of Hz", ErrConfig, key, raw)
		}
		return uint64(raw), nil
	default:
		return 0, fmt.Errorf("%w: %s: unsupported value %v", ErrConfig, key, raw)
	}
}

// count reads key as a non-negative integer.
func count(v *viper.Viper, key string) (uint64, error) {
	n, err := cast.ToUint64E(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrConfig, key, err)
	}
	return n, nil
}
