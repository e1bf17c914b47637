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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-martin/pandas-column-linter/pkg/config"
	"github.com/w-martin/pandas-column-linter/pkg/diag"
)

func write(t *testing.T, dir string, name string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// Cross-file resolution: a schema declared in one file, annotated in a
// second, used in a third.
func crossFileProject(t *testing.T) string {
	dir := t.TempDir()
	//
	write(t, dir, "s.py", `class S(Schema):
    a: int
    b: int
`)
	write(t, dir, "l.py", `from s import S

def load() -> DataFrame[S]: ...
`)
	write(t, dir, "p.py", `from l import load

x = load()
x["c"]
`)
	//
	return dir
}

func TestCheckCrossFile(t *testing.T) {
	dir := crossFileProject(t)
	//
	diags, err := Check(context.Background(), config.Default(), []string{dir})
	require.NoError(t, err)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Equal(t, filepath.Join(dir, "p.py"), diags[0].Path)
	assert.Equal(t, 4, diags[0].Line)
}

func TestCheckNoIndex(t *testing.T) {
	dir := crossFileProject(t)
	//
	options := config.Default()
	options.NoIndex = true
	//
	diags, err := Check(context.Background(), options, []string{dir})
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestCheckMergesAndOrdersAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.py", `df = read_csv("u.csv", usecols=["a"])
df["x"]
`)
	write(t, dir, "a.py", `df = read_csv("u.csv", usecols=["a"])
df["y"]
`)
	//
	diags, err := Check(context.Background(), config.Default(), []string{dir})
	require.NoError(t, err)
	//
	require.Len(t, diags, 2)
	assert.Equal(t, filepath.Join(dir, "a.py"), diags[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.py"), diags[1].Path)
}

func TestCheckCancellation(t *testing.T) {
	dir := crossFileProject(t)
	//
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	//
	_, err := Check(ctx, config.Default(), []string{dir})
	assert.Error(t, err)
}

func TestOptionsTable(t *testing.T) {
	table := optionsTable([]string{"strict-ingest", "warnings=false"})
	//
	assert.Equal(t, "true", table["strict-ingest"])
	assert.Equal(t, "false", table["warnings"])
	//
	options, err := config.Parse(table)
	require.NoError(t, err)
	assert.True(t, options.StrictIngest)
	assert.False(t, options.Warnings)
}

func TestExitCode(t *testing.T) {
	errors := []diag.Diagnostic{{Severity: diag.Error}}
	warnings := []diag.Diagnostic{{Severity: diag.Warning}}
	//
	assert.Equal(t, 0, exitCode(nil, false))
	assert.Equal(t, 0, exitCode(nil, true))
	assert.Equal(t, 1, exitCode(errors, false))
	assert.Equal(t, 0, exitCode(warnings, false))
	assert.Equal(t, 1, exitCode(warnings, true))
}

func TestRenderText(t *testing.T) {
	diags := []diag.Diagnostic{
		{Path: "a.py", Line: 2, Column: 1, Severity: diag.Error, Code: diag.UnknownColumn, Message: "unknown column \"age\""},
	}
	//
	var buffer bytes.Buffer
	require.NoError(t, Render(&buffer, "text", false, diags))
	//
	assert.Equal(t, "a.py:2:1: error[E001] unknown column \"age\"\n", buffer.String())
}

func TestRenderJSON(t *testing.T) {
	diags := []diag.Diagnostic{
		{Path: "a.py", Line: 2, Column: 1, Severity: diag.Warning, Code: diag.BareLoad, Message: "bare load"},
	}
	//
	var buffer bytes.Buffer
	require.NoError(t, Render(&buffer, "json", false, diags))
	//
	var records []map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &records))
	require.Len(t, records, 1)
	//
	assert.Equal(t, "a.py", records[0]["path"])
	assert.Equal(t, float64(2), records[0]["line"])
	assert.Equal(t, "warning", records[0]["severity"])
	assert.Equal(t, "W001", records[0]["code"])
}

func TestRenderGithub(t *testing.T) {
	diags := []diag.Diagnostic{
		{Path: "a.py", Line: 2, Column: 3, Severity: diag.Error, Code: diag.RenamedColumn, Message: "renamed"},
	}
	//
	var buffer bytes.Buffer
	require.NoError(t, Render(&buffer, "github", false, diags))
	//
	assert.Equal(t, "::error file=a.py,line=2,col=3,title=E002::renamed\n", buffer.String())
}

func TestRenderUnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, "yaml", false, nil))
}
