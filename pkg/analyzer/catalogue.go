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
package analyzer

// The closed catalogues of recognised library operations.  Load calls are
// keyed by receiver-module plus function name; a bare (unqualified) call to
// one of the load or combine functions is also recognised, since files are
// analysed without executing their imports.

// loadFunctions are the module-level loaders of the two supported libraries.
var loadFunctions = map[string]bool{
	"pandas.read_csv":     true,
	"pandas.read_parquet": true,
	"pandas.read_json":    true,
	"pandas.read_excel":   true,
	"polars.read_csv":     true,
	"polars.read_parquet": true,
	"polars.read_json":    true,
	"polars.read_excel":   true,
	"polars.scan_csv":     true,
	"polars.scan_parquet": true,
}

// combineFunctions are the module-level frame combinators.
var combineFunctions = map[string]bool{
	"pandas.merge":  true,
	"pandas.concat": true,
	"polars.concat": true,
}

// bareNames identifies the final segments accepted for unqualified load /
// combine calls.
var bareNames = map[string]string{
	"read_csv":     "pandas.read_csv",
	"read_parquet": "pandas.read_parquet",
	"read_json":    "pandas.read_json",
	"read_excel":   "pandas.read_excel",
	"scan_csv":     "polars.scan_csv",
	"scan_parquet": "polars.scan_parquet",
	"merge":        "pandas.merge",
	"concat":       "pandas.concat",
}

// columnKwargs is the closed set of column-bearing keyword arguments
// inspected on load calls.
var columnKwargs = map[string]bool{
	"usecols": true,
	"columns": true,
	"schema":  true,
	"dtype":   true,
}

// passthroughMethods leave the column set of their receiver untouched.
var passthroughMethods = map[string]bool{
	"filter":      true,
	"query":       true,
	"head":        true,
	"tail":        true,
	"sample":      true,
	"sort_values": true,
	"sort":        true,
	"reset_index": true,
	"nlargest":    true,
	"nsmallest":   true,
	"fillna":      true,
	"dropna":      true,
	"ffill":       true,
	"bfill":       true,
}

// untrackedMethods produce frames whose columns are undecidable statically.
var untrackedMethods = map[string]bool{
	"join":         true,
	"merge":        true,
	"pivot":        true,
	"pivot_table":  true,
	"melt":         true,
	"explode":      true,
	"get_dummies":  true,
	"stack":        true,
	"unstack":      true,
	"apply":        true,
	"map":          true,
	"transform":    true,
	"groupby":      true,
	"agg":          true,
	"with_columns": true,
}

// mergeKeyKwargs are the merge-key keyword arguments validated on combine
// operations, mapped to the side(s) they bind to.
type mergeSide uint8

const (
	bothSides mergeSide = iota
	leftSide
	rightSide
)

var mergeKeyKwargs = map[string]mergeSide{
	"on":       bothSides,
	"left_on":  leftSide,
	"right_on": rightSide,
}
