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
package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-martin/pandas-column-linter/pkg/diag"
	"github.com/w-martin/pandas-column-linter/pkg/schema"
)

func write(t *testing.T, dir string, name string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func scan(t *testing.T, dir string) (*Index, []diag.Diagnostic) {
	t.Helper()
	//
	collector := diag.NewCollector(true, true, true)
	//
	idx, err := Scan(context.Background(), collector, dir)
	require.NoError(t, err)
	//
	return idx, collector.Diagnostics()
}

func TestScanIndexesSchemas(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "s.py", `class Users(Schema):
    user_id: int
    email: str
`)
	//
	idx, diags := scan(t, dir)
	assert.Empty(t, diags)
	//
	users, ok := idx.LookupSchema("s.Users")
	require.True(t, ok)
	assert.Equal(t, []string{"user_id", "email"}, users.Columns())
}

func TestScanIndexesNestedModules(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "pkg/models/users.py", `class Users(Schema):
    a: int
`)
	//
	idx, _ := scan(t, dir)
	//
	_, ok := idx.LookupSchema("pkg.models.users.Users")
	assert.True(t, ok)
	assert.Equal(t, []string{"pkg.models.users"}, idx.Modules())
}

func TestScanIndexesFunctions(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "l.py", `from s import Users

def load() -> DataFrame[Users]: ...

def _private() -> DataFrame[Users]: ...
`)
	//
	idx, _ := scan(t, dir)
	//
	fn, module, ok := idx.LookupFunction("l.load")
	require.True(t, ok)
	assert.Equal(t, "load", fn.Name)
	assert.NotNil(t, fn.Return)
	assert.Equal(t, "s.Users", module.Imports["Users"])
	//
	_, _, ok = idx.LookupFunction("l._private")
	assert.False(t, ok)
}

func TestScanSkipsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "bad.py", "def broken(:\n")
	write(t, dir, "good.py", `class S(Schema):
    a: int
`)
	//
	idx, diags := scan(t, dir)
	// One file-level diagnostic; the rest of the index is usable.
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ParseError, diags[0].Code)
	//
	_, ok := idx.LookupSchema("good.S")
	assert.True(t, ok)
}

func TestSchemaInheritanceUnion(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "s.py", `class Base(Schema):
    a: int

class Extra(Schema):
    b: str

class Both(Base, Extra):
    c: float
`)
	//
	idx, diags := scan(t, dir)
	assert.Empty(t, diags)
	//
	both, ok := idx.LookupSchema("s.Both")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, both.Columns())
}

func TestSchemaConflictReportedAtDeclaration(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "s.py", `class Left(Schema):
    a: int

class Right(Schema):
    a: str

class Both(Left, Right):
    pass
`)
	//
	_, diags := scan(t, dir)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.SchemaConflict, diags[0].Code)
	assert.Equal(t, 7, diags[0].Line)
}

func TestColumnRefinements(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "s.py", `from typing import Optional

class Users(Schema):
    email: str = column(nullable=True, alias="mail")
    joined: Optional[date]
    scores = column_set(float, members=["s1", "s2"])
    ids = column_group("email", "scores")
`)
	//
	idx, diags := scan(t, dir)
	assert.Empty(t, diags)
	//
	users, ok := idx.LookupSchema("s.Users")
	require.True(t, ok)
	//
	email, ok := users.ColumnOf("mail")
	require.True(t, ok)
	assert.True(t, email.Nullable)
	assert.Equal(t, schema.StringType, email.Type)
	//
	joined, ok := users.ColumnOf("joined")
	require.True(t, ok)
	assert.True(t, joined.Nullable)
	assert.Equal(t, schema.DateType, joined.Type)
	//
	assert.True(t, users.Has("s1"))
	//
	names, _, ok := users.ResolveDescriptor("ids")
	require.True(t, ok)
	assert.Equal(t, []string{"email", "s1", "s2"}, names)
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "a.b.c", ModuleName("a/b/c.py"))
	assert.Equal(t, "a.b", ModuleName("a/b/__init__.py"))
	assert.Equal(t, "top", ModuleName("top.py"))
}

func TestFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "b.py", "x = 1\n")
	write(t, dir, "a.py", "x = 1\n")
	write(t, dir, "notes.txt", "skip me\n")
	//
	files, err := Files(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a.py"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.py"), files[1])
}
