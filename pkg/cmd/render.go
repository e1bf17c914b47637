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
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/w-martin/pandas-column-linter/pkg/diag"
)

// Render writes a batch of diagnostics in the requested output format.
// Colors are applied to the text format only, and only when requested (i.e.
// when stdout is a terminal).
func Render(out io.Writer, format string, colorize bool, diags []diag.Diagnostic) error {
	switch format {
	case "text":
		return renderText(out, colorize, diags)
	case "json":
		return renderJSON(out, diags)
	case "github":
		return renderGithub(out, diags)
	}
	//
	return fmt.Errorf("unknown output format \"%s\"", format)
}

func renderText(out io.Writer, colorize bool, diags []diag.Diagnostic) error {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	//
	for _, d := range diags {
		tag := fmt.Sprintf("%s[%s]", d.Severity, d.Code)
		//
		if colorize && d.Severity == diag.Error {
			tag = red.Sprint(tag)
		} else if colorize {
			tag = yellow.Sprint(tag)
		}
		//
		if _, err := fmt.Fprintf(out, "%s:%d:%d: %s %s\n", d.Path, d.Line, d.Column, tag, d.Message); err != nil {
			return err
		}
	}
	//
	return nil
}

// jsonDiagnostic is the stable wire shape of one diagnostic.
type jsonDiagnostic struct {
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func renderJSON(out io.Writer, diags []diag.Diagnostic) error {
	records := make([]jsonDiagnostic, len(diags))
	//
	for i, d := range diags {
		records[i] = jsonDiagnostic{d.Path, d.Line, d.Column, d.Severity.String(), string(d.Code), d.Message}
	}
	//
	encoder := json.NewEncoder(out)
	//
	return encoder.Encode(records)
}

func renderGithub(out io.Writer, diags []diag.Diagnostic) error {
	for _, d := range diags {
		_, err := fmt.Fprintf(out, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
			d.Severity, d.Path, d.Line, d.Column, d.Code, d.Message)
		//
		if err != nil {
			return err
		}
	}
	//
	return nil
}
