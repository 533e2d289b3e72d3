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

package emit

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"go/format"
	"io"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"pllcalc/src/pll"
	"pllcalc/src/support"
)

type Format string

const (
	Text Format = "text"
	Go   Format = "go"
	C    Format = "c"
	JSON Format = "json"
	YAML Format = "yaml"
)

var Formats = []Format{Text, Go, C, JSON, YAML}

var ErrFormat = errors.New("emit: unknown format")

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q, want one of %v", ErrFormat, s, Formats)
}

// Report is a solved configuration together with what it was solved for.
type Report struct {
	Targets      pll.Targets
	Coefficients pll.Coefficients
	Package      string // Go package name for Go output
	Prefix       string // identifier prefix for Go and C output
	Generator    string // recorded in generated file headers
}

// record is the flat form used for JSON and YAML.
type record struct {
	N            uint32 `json:"n" yaml:"n"`
	M            uint32 `json:"m" yaml:"m"`
	P            uint32 `json:"p" yaml:"p"`
	Q            uint32 `json:"q" yaml:"q"`
	HseFreq      uint64 `json:"hse_hz" yaml:"hse_hz"`
	VcoInFreq    uint64 `json:"vco_in_hz" yaml:"vco_in_hz"`
	VcoFreq      uint64 `json:"vco_hz" yaml:"vco_hz"`
	SysclockFreq uint64 `json:"sysclk_hz" yaml:"sysclk_hz"`
	UsbFreq      uint64 `json:"usb_hz" yaml:"usb_hz"`
}

func (r Report) record() record {
	c, hse := r.Coefficients, r.Targets.HseFreq
	return record{
		N: c.N, M: c.M, P: c.P, Q: c.Q,
		HseFreq:      hse,
		VcoInFreq:    c.VcoInFreq(hse),
		VcoFreq:      c.VcoFreq(hse),
		SysclockFreq: c.SysclockFreq(hse),
		UsbFreq:      c.UsbFreq(hse),
	}
}

//go:embed go.tmpl
var goTemplate string

//go:embed c.tmpl
var cTemplate string

var templates = template.Must(template.New("go").Funcs(template.FuncMap{
	"freq":  support.FormatFrequency,
	"upper": strings.ToUpper,
}).Parse(goTemplate))

func init() {
	template.Must(templates.New("c").Parse(cTemplate))
}

// Render writes r to w in the given format.
func Render(w io.Writer, f Format, r Report) error {
	if r.Prefix == "" {
		r.Prefix = "PLL_"
	}
	if r.Package == "" {
		r.Package = "clock"
	}
	if r.Generator == "" {
		r.Generator = "pllcalc"
	}

	switch f {
	case Text:
		rec := r.record()
		_, err := fmt.Fprintf(w, "%s\nVCO in %s, VCO %s, SYSCLK %s, USB %s\n",
			r.Coefficients,
			support.FormatFrequency(rec.VcoInFreq),
			support.FormatFrequency(rec.VcoFreq),
			support.FormatFrequency(rec.SysclockFreq),
			support.FormatFrequency(rec.UsbFreq))
		return err
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.record())
	case YAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(r.record()); err != nil {
			return err
		}
		return enc.Close()
	case Go:
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, "go", r); err != nil {
			return err
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return fmt.Errorf("emit: generated Go does not parse: %w", err)
		}
		_, err = w.Write(src)
		return err
	case C:
		return templates.ExecuteTemplate(w, "c", r)
	}
	return fmt.Errorf("%w %q", ErrFormat, f)
}
