// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package diag defines the diagnostic records produced by the analyzer: a
// fixed taxonomy of stable codes, severity policy, deduplication and stable
// ordering, plus typo suggestions via bounded edit distance.
package diag

import (
	"fmt"
	"sort"

	"github.com/w-martin/pandas-column-linter/pkg/util/source"
)

// Severity of a diagnostic.
type Severity uint8

const (
	// Error severity indicates a reference which cannot succeed at runtime.
	Error Severity = iota
	// Warning severity indicates a suspicious but survivable construct.
	Warning
)

// String returns the lowercase name of this severity.
func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	//
	return "error"
}

// Code identifies a diagnostic within the fixed taxonomy.
type Code string

const (
	// UnknownColumn is reported for a column reference not covered by the
	// binding's schema or inferred column set.
	UnknownColumn Code = "E001"
	// RenamedColumn is reported for a reference to a column which was
	// renamed earlier on the same binding.
	RenamedColumn Code = "E002"
	// BareLoad is reported (under strict ingest) for a load call carrying no
	// column information.
	BareLoad Code = "W001"
	// AbsentDropTarget is reported (under strict ingest) when a drop lists a
	// column which is not present.
	AbsentDropTarget Code = "W002"
	// SchemaConflict is reported at a declaration site which requested the
	// union of incompatible schemas.
	SchemaConflict Code = "SCHEMA-CONFLICT"
	// ParseError is reported once per file which could not be parsed.
	ParseError Code = "PARSE-ERROR"
)

// Severity returns the severity class of this code.
func (c Code) Severity() Severity {
	switch c {
	case BareLoad, AbsentDropTarget:
		return Warning
	default:
		return Error
	}
}

// Diagnostic is a single analyzer finding, tied to a position in a source
// file.  Line and column both count from one.
type Diagnostic struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"-"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

// String renders this diagnostic in the stable, editor-parseable form.
func (p *Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s[%s] %s", p.Path, p.Line, p.Column, p.Severity, p.Code, p.Message)
}

// Compare orders diagnostics by (path, line, column, code), breaking any
// remaining tie on the message.
func Compare(l Diagnostic, r Diagnostic) int {
	switch {
	case l.Path != r.Path:
		if l.Path < r.Path {
			return -1
		}
		//
		return 1
	case l.Line != r.Line:
		return l.Line - r.Line
	case l.Column != r.Column:
		return l.Column - r.Column
	case l.Code != r.Code:
		if l.Code < r.Code {
			return -1
		}
		//
		return 1
	case l.Message != r.Message:
		if l.Message < r.Message {
			return -1
		}
		//
		return 1
	}
	//
	return 0
}

// Finalise sorts a batch of diagnostics into the stable order and collapses
// exact duplicates.
func Finalise(diags []Diagnostic) []Diagnostic {
	sort.SliceStable(diags, func(i, j int) bool {
		return Compare(diags[i], diags[j]) < 0
	})
	//
	result := make([]Diagnostic, 0, len(diags))
	//
	for i, d := range diags {
		if i > 0 && Compare(diags[i-1], d) == 0 {
			continue
		}
		//
		result = append(result, d)
	}
	//
	return result
}

// Collector accumulates diagnostics for one analysis run, applying the
// configured emission gates as they arrive.
type Collector struct {
	// Master switch; nothing is emitted when false.
	enabled bool
	// Whether warning-severity diagnostics are emitted at all.
	warnings bool
	// Whether the strict ingest warnings (W001, W002) are enabled.
	strictIngest bool
	//
	diags []Diagnostic
}

// NewCollector constructs a collector with the given emission gates.
func NewCollector(enabled bool, warnings bool, strictIngest bool) *Collector {
	return &Collector{enabled: enabled, warnings: warnings, strictIngest: strictIngest}
}

// Report records a diagnostic at an explicit position, subject to the
// emission gates.
func (p *Collector) Report(path string, line int, column int, code Code, message string) {
	severity := code.Severity()
	//
	switch {
	case !p.enabled:
		return
	case (code == BareLoad || code == AbsentDropTarget) && !p.strictIngest:
		return
	case severity == Warning && !p.warnings:
		return
	}
	//
	p.diags = append(p.diags, Diagnostic{path, line, column, severity, code, message})
}

// ReportSpan records a diagnostic against a span of a source file.
func (p *Collector) ReportSpan(srcfile *source.File, span source.Span, code Code, message string) {
	line, column := srcfile.Location(span.Start())
	p.Report(srcfile.Filename(), line, column, code, message)
}

// Diagnostics returns everything collected so far, deduplicated and in the
// stable order.
func (p *Collector) Diagnostics() []Diagnostic {
	return Finalise(p.diags)
}
