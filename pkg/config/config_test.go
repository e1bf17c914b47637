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
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	options := Default()
	//
	assert.True(t, options.Enabled)
	assert.True(t, options.Warnings)
	assert.False(t, options.StrictIngest)
	assert.False(t, options.NoIndex)
}

func TestParse(t *testing.T) {
	options, err := Parse(map[string]string{
		"enabled":       "true",
		"warnings":      "false",
		"strict-ingest": "1",
		"no-index":      "true",
	})
	//
	require.NoError(t, err)
	assert.True(t, options.Enabled)
	assert.False(t, options.Warnings)
	assert.True(t, options.StrictIngest)
	assert.True(t, options.NoIndex)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	options, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), options)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse(map[string]string{"colour": "true"})
	require.Error(t, err)
	//
	cerr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "colour", cerr.Key)
}

func TestParseMalformedBoolean(t *testing.T) {
	_, err := Parse(map[string]string{"enabled": "maybe"})
	assert.Error(t, err)
}
