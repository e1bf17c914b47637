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
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		left     string
		right    string
		expected int
	}{
		{"", "", 0},
		{"revenue", "revenue", 0},
		{"revnue", "revenue", 1},
		{"ab", "ba", 1},
		{"user_di", "user_id", 1},
		{"age", "email", 4},
		{"abc", "", 3},
	}
	//
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Distance(tt.left, tt.right), "%s vs %s", tt.left, tt.right)
		assert.Equal(t, tt.expected, Distance(tt.right, tt.left), "%s vs %s", tt.right, tt.left)
	}
}

// The distance never exceeds the library's Levenshtein distance, and comes out
// strictly lower where an adjacent transposition is involved.
func TestDistanceAgreesWithLevenshtein(t *testing.T) {
	pairs := [][2]string{
		{"revnue", "revenue"},
		{"email", "emails"},
		{"user_id", "userid"},
		{"amount", "amonut"},
	}
	//
	for _, pair := range pairs {
		plain := levenshtein.DistanceForStrings([]rune(pair[0]), []rune(pair[1]), levenshtein.DefaultOptions)
		assert.LessOrEqual(t, Distance(pair[0], pair[1]), plain, "%s vs %s", pair[0], pair[1])
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		expected   string
	}{
		// One edit away.
		{"revnue", []string{"revenue"}, "revenue"},
		// Too far for the bound.
		{"age", []string{"user_id", "email"}, ""},
		// Transposition counts one.
		{"user_di", []string{"user_id"}, "user_id"},
		// Lexicographically smallest tie.
		{"ac", []string{"ad", "ab"}, "ab"},
		// Short names only tolerate one edit.
		{"ab", []string{"ba"}, "ba"},
		{"ab", []string{"cd"}, ""},
		// Longer names tolerate two.
		{"turnover_", []string{"turnover"}, "turnover"},
		{"turnoveer_", []string{"turnover"}, "turnover"},
		{"", []string{"a"}, "a"},
	}
	//
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Suggest(tt.name, tt.candidates), "suggesting for %s", tt.name)
	}
}
