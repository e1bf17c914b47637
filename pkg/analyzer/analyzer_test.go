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

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-martin/pandas-column-linter/pkg/config"
	"github.com/w-martin/pandas-column-linter/pkg/diag"
	"github.com/w-martin/pandas-column-linter/pkg/util/source"
)

func analyze(t *testing.T, options config.Options, input string) []diag.Diagnostic {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test.py", []byte(input))
	//
	return New(options, nil).Analyze(context.Background(), srcfile)
}

func analyzeDefault(t *testing.T, input string) []diag.Diagnostic {
	return analyze(t, config.Default(), input)
}

func TestInferredLoadWithDistantTypo(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["user_id", "email"])
df["age"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Equal(t, 2, diags[0].Line)
	assert.Contains(t, diags[0].Message, "age")
	assert.Contains(t, diags[0].Message, "user_id")
	assert.Contains(t, diags[0].Message, "email")
	// Too far from anything for a suggestion.
	assert.NotContains(t, diags[0].Message, "did you mean")
}

func TestTypoWithSuggestion(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["revenue"])
df["revnue"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Contains(t, diags[0].Message, "did you mean \"revenue\"?")
}

func TestRenameLedgerHit(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["email"])
renamed = df.rename(columns={"email": "email_address"})
renamed["email"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.RenamedColumn, diags[0].Code)
	assert.Equal(t, 3, diags[0].Line)
	assert.Contains(t, diags[0].Message, "email_address")
}

func TestRenameLeavesOriginalBindingAlone(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["email"])
renamed = df.rename(columns={"email": "email_address"})
df["email"]
renamed["email_address"]
`)
	//
	assert.Empty(t, diags)
}

// Rename ledger precedence: the ledger wins even when a later assignment
// brings the old name back into the inferred set.
func TestRenameLedgerPrecedence(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["email"])
df = df.rename(columns={"email": "email_address"})
df["email"] = 1
df["email"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.RenamedColumn, diags[0].Code)
	assert.Equal(t, 4, diags[0].Line)
}

func TestDropAbsentColumn(t *testing.T) {
	input := `class S(Schema):
    a: int
    b: int

df: DataFrame[S] = read_csv("u.csv")
df.drop(columns=["nope"])
`
	// Silent by default.
	assert.Empty(t, analyzeDefault(t, input))
	// W002 under strict ingest.
	options := config.Default()
	options.StrictIngest = true
	//
	diags := analyze(t, options, input)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.AbsentDropTarget, diags[0].Code)
	assert.Equal(t, 6, diags[0].Line)
}

func TestUntrackedEscapeHatch(t *testing.T) {
	diags := analyzeDefault(t, `class S(Schema):
    a: int

df: DataFrame[S] = read_csv("u.csv")
y = df.pivot(index="a", columns="b", values="a")
y["anything"]
`)
	//
	assert.Empty(t, diags)
}

func TestBareLoadWarning(t *testing.T) {
	input := "df = read_csv(\"u.csv\")\n"
	//
	assert.Empty(t, analyzeDefault(t, input))
	//
	options := config.Default()
	options.StrictIngest = true
	//
	diags := analyze(t, options, input)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.BareLoad, diags[0].Code)
}

func TestAnnotationSuppressesBareLoad(t *testing.T) {
	options := config.Default()
	options.StrictIngest = true
	//
	diags := analyze(t, options, `class S(Schema):
    a: int

df: DataFrame[S] = read_csv("u.csv")
`)
	//
	assert.Empty(t, diags)
}

func TestLoadFromDtypeMapping(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", dtype={"a": int, "b": float})
df["c"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
}

func TestSubscriptAssignmentAddsColumn(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
df["b"] = 1
df["b"]
`)
	//
	assert.Empty(t, diags)
}

func TestDelRemovesColumn(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a", "b"])
del df["b"]
df["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Equal(t, 3, diags[0].Line)
}

func TestAssignAddsKeywordColumns(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
df2 = df.assign(b=1, c=2)
df2["b"]
df2["c"]
df["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 5, diags[0].Line)
}

func TestListSubscriptNarrows(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a", "b", "c"])
small = df[["a", "b"]]
small["c"]
df["c"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
}

func TestSelectNarrows(t *testing.T) {
	diags := analyzeDefault(t, `df = scan_csv("u.csv", schema={"a": "int", "b": "int"})
small = df.select(col("a"))
small["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Equal(t, 3, diags[0].Line)
}

func TestColBuilderValidatesAgainstReceiver(t *testing.T) {
	diags := analyzeDefault(t, `df = scan_csv("u.csv", schema={"a": "int"})
df.filter(col("missing") > 1)
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Equal(t, 2, diags[0].Line)
}

func TestPassthroughPreservesState(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
df2 = df.sort_values("a").head(10).fillna(0).reset_index()
df2["a"]
df2["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Line)
}

func TestPopAndInsert(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a", "b"])
df.pop("b")
df.insert(0, "c", 1)
df["b"]
df["c"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Line)
}

func TestModuleMergeUnions(t *testing.T) {
	diags := analyzeDefault(t, `a = read_csv("a.csv", usecols=["k", "x"])
b = read_csv("b.csv", usecols=["k", "y"])
m = merge(a, b, on="k")
m["x"]
m["y"]
m["z"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 6, diags[0].Line)
}

func TestMergeKeyValidation(t *testing.T) {
	diags := analyzeDefault(t, `a = read_csv("a.csv", usecols=["k", "x"])
b = read_csv("b.csv", usecols=["j", "y"])
m = merge(a, b, left_on="k", right_on="missing")
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Equal(t, 3, diags[0].Line)
	assert.Contains(t, diags[0].Message, "missing")
}

func TestConcatUnions(t *testing.T) {
	diags := analyzeDefault(t, `a = read_csv("a.csv", usecols=["x"])
b = read_csv("b.csv", usecols=["y"])
c = concat([a, b])
c["x"]
c["y"]
`)
	//
	assert.Empty(t, diags)
}

func TestInstanceMergeUntracks(t *testing.T) {
	diags := analyzeDefault(t, `a = read_csv("a.csv", usecols=["k", "x"])
b = read_csv("b.csv", usecols=["k", "y"])
m = a.merge(b, on="k")
m["anything"]
`)
	//
	assert.Empty(t, diags)
}

func TestInstanceMergeValidatesKeys(t *testing.T) {
	diags := analyzeDefault(t, `a = read_csv("a.csv", usecols=["k", "x"])
b = read_csv("b.csv", usecols=["k", "y"])
m = a.merge(b, on="nope")
`)
	// Both sides lack the key; each side reports it at the same position, and
	// the two messages list different known columns, so neither collapses.
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
}

func TestAliasingIsCopyOnWrite(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
other = df
other["b"] = 1
df["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Line)
}

func TestFunctionParameterSeeding(t *testing.T) {
	diags := analyzeDefault(t, `class S(Schema):
    a: int

def process(df: DataFrame[S]):
    df["a"]
    df["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 6, diags[0].Line)
}

func TestLocalFunctionReturnAnnotation(t *testing.T) {
	diags := analyzeDefault(t, `class S(Schema):
    a: int

def load() -> DataFrame[S]: ...

x = load()
x["c"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.UnknownColumn, diags[0].Code)
	assert.Equal(t, 7, diags[0].Line)
}

func TestBranchMeetDegradesDivergentStates(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
if flag:
    df = read_csv("v.csv", usecols=["b"])
df["a"]
`)
	// Divergent inferred states meet to unknown: no diagnostic either way.
	assert.Empty(t, diags)
}

func TestBranchMeetPreservesUntouchedStates(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
if flag:
    x = 1
df["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Line)
}

func TestUntrackedIsContagiousAtMeet(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
if flag:
    df = df.pivot(index="a", columns="b", values="a")
df["zzz"]
`)
	//
	assert.Empty(t, diags)
}

func TestSchemaStateDegradesOnRename(t *testing.T) {
	diags := analyzeDefault(t, `class S(Schema):
    a: int
    b: int

df: DataFrame[S] = read_csv("u.csv")
df = df.rename(columns={"a": "a2"})
df["a2"]
df["b"]
df["a"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.RenamedColumn, diags[0].Code)
	assert.Equal(t, 9, diags[0].Line)
}

func TestRegexSchemaAcceptsMatches(t *testing.T) {
	diags := analyzeDefault(t, `class S(Schema):
    a: int
    meta = column_set(str, pattern=r"meta_.*")

df: DataFrame[S] = read_csv("u.csv")
df["meta_origin"]
df["metadata"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 7, diags[0].Line)
}

func TestUnknownMethodPreservesReceiver(t *testing.T) {
	diags := analyzeDefault(t, `df = read_csv("u.csv", usecols=["a"])
y = df.frobnicate()
y["anything"]
df["a"]
df["b"]
`)
	//
	require.Len(t, diags, 1)
	assert.Equal(t, 5, diags[0].Line)
}

func TestParseFailureYieldsSingleDiagnostic(t *testing.T) {
	diags := analyzeDefault(t, "df = read_csv(\ndf[\"a\"]\n")
	//
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ParseError, diags[0].Code)
}

func TestDisabledEmitsNothing(t *testing.T) {
	options := config.Default()
	options.Enabled = false
	//
	diags := analyze(t, options, `df = read_csv("u.csv", usecols=["a"])
df["b"]
`)
	//
	assert.Empty(t, diags)
}

func TestDeterminism(t *testing.T) {
	input := `df = read_csv("u.csv", usecols=["a", "b"])
df["x"]
df["y"]
other = read_csv("v.csv", usecols=["c"])
other["d"]
`
	first := analyzeDefault(t, input)
	//
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, analyzeDefault(t, input))
	}
}

func TestLocality(t *testing.T) {
	base := `df = read_csv("u.csv", usecols=["a"])
df["b"]
`
	extended := base + "unused = read_csv(\"w.csv\", usecols=[\"z\"])\n"
	//
	baseDiags := analyzeDefault(t, base)
	extendedDiags := analyzeDefault(t, extended)
	//
	assert.Equal(t, baseDiags, extendedDiags)
}

func TestMeetIntersectsRenameLedgers(t *testing.T) {
	left := NewInferred([]string{"b"})
	left.recordRename("a", "b")
	left.recordRename("x", "y")
	//
	right := NewInferred([]string{"b"})
	right.recordRename("a", "b")
	//
	met := Meet(left, right)
	//
	next, ok := met.Renamed("a")
	require.True(t, ok)
	assert.Equal(t, "b", next)
	//
	_, ok = met.Renamed("x")
	assert.False(t, ok)
}
