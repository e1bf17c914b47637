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
	"regexp"
	"sort"

	"github.com/w-martin/pandas-column-linter/pkg/schema"
)

// StateKind discriminates the column-set states a binding can be in.
type StateKind uint8

const (
	// Unknown states carry no column information; validation is suppressed
	// silently.
	Unknown StateKind = iota
	// HasSchema states conform to a named schema.
	HasSchema
	// Inferred states carry column names collected from load calls and
	// propagated through operations, without a named schema.
	Inferred
	// Untracked states result from operations whose output columns are
	// undecidable statically; no validation, no propagation.
	Untracked
)

// State is the column-set state of one frame-valued binding.  A state is
// mutated in place by in-place operations on its binding (subscript
// assignment, del, insert, pop) and cloned whenever a binding is aliased.
type State struct {
	kind StateKind
	// Schema this binding conforms to (HasSchema only).
	schema *schema.Schema
	// Column names believed to exist (Inferred only).
	names map[string]bool
	// Regex sets accepted alongside the names (Inferred only).
	regexes []*regexp.Regexp
	// Whether extra columns beyond those listed are tolerated.
	open bool
	// Rename ledger: old column name mapped to its replacement.
	renames map[string]string
}

// NewUnknown constructs a state carrying no column information.
func NewUnknown() *State {
	return &State{kind: Unknown}
}

// NewUntracked constructs the terminal untracked state.
func NewUntracked() *State {
	return &State{kind: Untracked}
}

// NewSchema constructs a state conforming to a given schema.
func NewSchema(s *schema.Schema) *State {
	return &State{kind: HasSchema, schema: s}
}

// NewInferred constructs a state from a collection of known column names.
func NewInferred(names []string) *State {
	set := make(map[string]bool, len(names))
	//
	for _, name := range names {
		set[name] = true
	}
	//
	return &State{kind: Inferred, names: set}
}

// Kind returns the discriminant of this state.
func (p *State) Kind() StateKind {
	return p.kind
}

// Schema returns the schema this state conforms to, when it has one.
func (p *State) Schema() *schema.Schema {
	return p.schema
}

// Validatable reports whether column references against this state are
// checked at all.
func (p *State) Validatable() bool {
	return p.kind == HasSchema || p.kind == Inferred
}

// Clone produces an independent copy of this state.
func (p *State) Clone() *State {
	clone := &State{kind: p.kind, schema: p.schema, open: p.open}
	//
	if p.names != nil {
		clone.names = make(map[string]bool, len(p.names))
		//
		for name := range p.names {
			clone.names[name] = true
		}
	}
	//
	clone.regexes = append(clone.regexes, p.regexes...)
	//
	if p.renames != nil {
		clone.renames = make(map[string]string, len(p.renames))
		//
		for old, next := range p.renames {
			clone.renames[old] = next
		}
	}
	//
	return clone
}

// Accepts determines whether a reference to a given column name is valid
// against this state.  Unknown and untracked states accept everything.
func (p *State) Accepts(name string) bool {
	switch p.kind {
	case HasSchema:
		return p.schema.Accepts(name)
	case Inferred:
		if p.open || p.names[name] {
			return true
		}
		//
		for _, pattern := range p.regexes {
			if pattern.MatchString(name) {
				return true
			}
		}
		//
		return false
	}
	//
	return true
}

// Columns returns the known column names of this state: declaration order
// for schemas, sorted order for inferred sets.
func (p *State) Columns() []string {
	switch p.kind {
	case HasSchema:
		return p.schema.Columns()
	case Inferred:
		names := make([]string, 0, len(p.names))
		//
		for name := range p.names {
			names = append(names, name)
		}
		//
		sort.Strings(names)
		//
		return names
	}
	//
	return nil
}

// Renamed looks up a column in the rename ledger.
func (p *State) Renamed(name string) (string, bool) {
	next, ok := p.renames[name]
	return next, ok
}

// recordRename adds an entry to the rename ledger.
func (p *State) recordRename(old string, next string) {
	if p.renames == nil {
		p.renames = make(map[string]string)
	}
	//
	p.renames[old] = next
	// A rename chain collapses onto the final name.
	for key, value := range p.renames {
		if value == old {
			p.renames[key] = next
		}
	}
}

// degrade rewrites a schema state into the equivalent inferred state, as
// happens when a schema-modifying operation rewrites the column set.  The
// original schema identity is no longer claimed afterwards.  States of any
// other kind are unaffected.
func (p *State) degrade() {
	if p.kind != HasSchema {
		return
	}
	//
	names := p.schema.Columns()
	p.names = make(map[string]bool, len(names))
	//
	for _, name := range names {
		p.names[name] = true
	}
	//
	for _, set := range p.schema.Regexes() {
		p.regexes = append(p.regexes, set.Pattern)
	}
	//
	p.open = p.schema.AllowsExtra()
	p.kind = Inferred
	p.schema = nil
}

// add records a new column on this state (degrading a schema state first).
func (p *State) add(name string) {
	if !p.Validatable() {
		return
	}
	//
	p.degrade()
	//
	if p.names == nil {
		p.names = make(map[string]bool)
	}
	//
	p.names[name] = true
}

// remove discards a column from this state (degrading a schema state
// first).  Removing an absent column is a no-op.
func (p *State) remove(name string) {
	if !p.Validatable() {
		return
	}
	//
	p.degrade()
	delete(p.names, name)
}

// has determines whether a column is explicitly present (no regex
// consultation), as needed for absent-drop detection.
func (p *State) has(name string) bool {
	switch p.kind {
	case HasSchema:
		return p.schema.Has(name)
	case Inferred:
		return p.names[name]
	}
	//
	return false
}

// narrowed produces the state of a projection onto the given column names.
func (p *State) narrowed(names []string) *State {
	if !p.Validatable() {
		return &State{kind: p.kind}
	}
	//
	return NewInferred(names)
}

// Meet combines the states a binding holds on two control-flow paths into
// the conservative post-state: identical schemas survive, untrackedness is
// contagious, and everything else degrades to unknown.  Rename ledgers
// intersect.
func Meet(left *State, right *State) *State {
	if left == right {
		return left
	}
	//
	if left == nil || right == nil {
		return NewUnknown()
	}
	// A binding untouched on both paths (or changed identically) keeps its
	// state.
	if Equal(left, right) {
		return left.Clone()
	}
	//
	var result *State
	//
	switch {
	case left.kind == Untracked || right.kind == Untracked:
		result = NewUntracked()
	case left.kind == HasSchema && right.kind == HasSchema && left.schema == right.schema:
		result = NewSchema(left.schema)
	default:
		result = NewUnknown()
	}
	//
	for old, next := range left.renames {
		if other, ok := right.renames[old]; ok && other == next {
			result.recordRename(old, next)
		}
	}
	//
	return result
}

// Equal determines whether two states are structurally identical.
func Equal(left *State, right *State) bool {
	if left.kind != right.kind || left.schema != right.schema || left.open != right.open {
		return false
	}
	//
	if len(left.names) != len(right.names) || len(left.regexes) != len(right.regexes) ||
		len(left.renames) != len(right.renames) {
		return false
	}
	//
	for name := range left.names {
		if !right.names[name] {
			return false
		}
	}
	//
	for i, pattern := range left.regexes {
		if right.regexes[i] != pattern {
			return false
		}
	}
	//
	for old, next := range left.renames {
		if other, ok := right.renames[old]; !ok || other != next {
			return false
		}
	}
	//
	return true
}
