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

// Package config turns the flat key/value options bag supplied by the front
// end into the typed options consumed by the analyzer.
package config

import (
	"fmt"
	"sort"
	"strconv"
)

// Options gates what the analyzer emits.
type Options struct {
	// Enabled is the master switch; when false the engine emits nothing.
	Enabled bool
	// Warnings enables warning-severity diagnostics.
	Warnings bool
	// StrictIngest enables the W001 / W002 warnings.
	StrictIngest bool
	// NoIndex disables the cross-file project index.
	NoIndex bool
}

// Default returns the options in force when nothing is configured.
func Default() Options {
	return Options{Enabled: true, Warnings: true}
}

// Error indicates an unusable configuration; it aborts the run before any
// analysis begins.
type Error struct {
	// Key on which parsing failed.
	Key string
	// Explanation of the failure.
	Reason string
}

// Error implements the error interface.
func (p *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s (%s)", p.Key, p.Reason)
}

// Parse applies a flat options table on top of the defaults.  Keys are drawn
// from a closed set; anything else (or a malformed boolean) yields an Error.
func Parse(table map[string]string) (Options, error) {
	options := Default()
	// Sort keys so the first failure is deterministic.
	keys := make([]string, 0, len(table))
	//
	for key := range table {
		keys = append(keys, key)
	}
	//
	sort.Strings(keys)
	//
	for _, key := range keys {
		value, err := strconv.ParseBool(table[key])
		if err != nil {
			return options, &Error{key, fmt.Sprintf("malformed boolean \"%s\"", table[key])}
		}
		//
		switch key {
		case "enabled":
			options.Enabled = value
		case "warnings":
			options.Warnings = value
		case "strict-ingest":
			options.StrictIngest = value
		case "no-index":
			options.NoIndex = value
		default:
			return options, &Error{key, "unrecognised option"}
		}
	}
	//
	return options, nil
}
