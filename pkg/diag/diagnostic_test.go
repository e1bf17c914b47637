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
package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOfCodes(t *testing.T) {
	assert.Equal(t, Error, UnknownColumn.Severity())
	assert.Equal(t, Error, RenamedColumn.Severity())
	assert.Equal(t, Warning, BareLoad.Severity())
	assert.Equal(t, Warning, AbsentDropTarget.Severity())
	assert.Equal(t, Error, SchemaConflict.Severity())
	assert.Equal(t, Error, ParseError.Severity())
}

func TestString(t *testing.T) {
	d := Diagnostic{"a.py", 3, 7, Error, UnknownColumn, "unknown column \"age\""}
	assert.Equal(t, "a.py:3:7: error[E001] unknown column \"age\"", d.String())
}

func TestFinaliseOrdering(t *testing.T) {
	diags := []Diagnostic{
		{"b.py", 1, 1, Error, UnknownColumn, "x"},
		{"a.py", 2, 1, Error, UnknownColumn, "x"},
		{"a.py", 1, 5, Error, RenamedColumn, "x"},
		{"a.py", 1, 5, Error, UnknownColumn, "x"},
		{"a.py", 1, 2, Error, UnknownColumn, "x"},
	}
	//
	sorted := Finalise(diags)
	require.Len(t, sorted, 5)
	//
	assert.Equal(t, Diagnostic{"a.py", 1, 2, Error, UnknownColumn, "x"}, sorted[0])
	assert.Equal(t, Diagnostic{"a.py", 1, 5, Error, UnknownColumn, "x"}, sorted[1])
	assert.Equal(t, Diagnostic{"a.py", 1, 5, Error, RenamedColumn, "x"}, sorted[2])
	assert.Equal(t, Diagnostic{"a.py", 2, 1, Error, UnknownColumn, "x"}, sorted[3])
	assert.Equal(t, Diagnostic{"b.py", 1, 1, Error, UnknownColumn, "x"}, sorted[4])
}

func TestFinaliseDeduplicates(t *testing.T) {
	d := Diagnostic{"a.py", 1, 1, Error, UnknownColumn, "x"}
	//
	assert.Len(t, Finalise([]Diagnostic{d, d, d}), 1)
	// Differing messages survive.
	other := d
	other.Message = "y"
	assert.Len(t, Finalise([]Diagnostic{d, other}), 2)
}

func TestCollectorGates(t *testing.T) {
	tests := []struct {
		name         string
		enabled      bool
		warnings     bool
		strictIngest bool
		code         Code
		expected     int
	}{
		{"disabled drops errors", false, true, true, UnknownColumn, 0},
		{"errors pass", true, true, false, UnknownColumn, 1},
		{"bare load needs strict ingest", true, true, false, BareLoad, 0},
		{"bare load with strict ingest", true, true, true, BareLoad, 1},
		{"strict ingest warning still gated by warnings", true, false, true, BareLoad, 0},
		{"absent drop needs strict ingest", true, true, false, AbsentDropTarget, 0},
		{"errors ignore the warnings gate", true, false, false, RenamedColumn, 1},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := NewCollector(tt.enabled, tt.warnings, tt.strictIngest)
			collector.Report("a.py", 1, 1, tt.code, "m")
			//
			assert.Len(t, collector.Diagnostics(), tt.expected)
		})
	}
}
