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

// Package schema provides the column-level data model against which frame
// accesses are validated: named schemas composed of typed columns, explicit
// and regex column sets, and column groups, together with the union algebra
// over schemas.
package schema

import (
	"fmt"
)

// Member is implemented by everything which can be declared within a schema:
// columns, column sets and column groups.
type Member interface {
	// MemberName returns the attribute name under which this member was
	// declared.
	MemberName() string
}

// MemberName returns the attribute name under which this column was declared.
func (p *Column) MemberName() string {
	return p.Name
}

// MemberName returns the attribute name under which this set was declared.
func (p *ColumnSet) MemberName() string {
	return p.Name
}

// MemberName returns the attribute name under which this group was declared.
func (p *ColumnGroup) MemberName() string {
	return p.Name
}

// Conflict is reported when two schemas being combined declare the same
// column with differing type or nullability.
type Conflict struct {
	// Column on which the schemas disagree.
	Column string
	// Left declaration.
	Left Column
	// Right declaration.
	Right Column
}

// Error implements the error interface.
func (p *Conflict) Error() string {
	return fmt.Sprintf("conflicting declarations of column \"%s\" (%s vs %s)",
		p.Column, p.Left.Type, p.Right.Type)
}

// Schema is an ordered, named collection of columns, column sets and column
// groups.  Members are indexed both by attribute name (for descriptor
// resolution) and by column name (for validation); the two views are kept
// consistent by construction.
type Schema struct {
	// Name of this schema.
	name string
	// Attribute names in declaration order.
	attrs []string
	// Members indexed by attribute name.
	members map[string]Member
	// Column names (including aliases and explicit set members) mapped to
	// their owning attribute.
	columns map[string]string
	// Regex sets in declaration order.
	regexes []*ColumnSet
	// Whether columns beyond those declared are tolerated.
	allowExtra bool
}

// New constructs an empty schema with a given name.
func New(name string, allowExtra bool) *Schema {
	return &Schema{
		name:       name,
		members:    make(map[string]Member),
		columns:    make(map[string]string),
		allowExtra: allowExtra,
	}
}

// Name returns the name of this schema.
func (p *Schema) Name() string {
	return p.name
}

// AllowsExtra reports whether this schema tolerates columns beyond those
// declared.
func (p *Schema) AllowsExtra() bool {
	return p.allowExtra
}

// AddColumn declares a new column, or fails if its name (or alias) is
// already taken.
func (p *Schema) AddColumn(column Column) error {
	if column.Name == "" {
		return fmt.Errorf("schema \"%s\": empty column name", p.name)
	}
	//
	if err := p.declare(column.Name); err != nil {
		return err
	}
	//
	p.attrs = append(p.attrs, column.Name)
	p.members[column.Name] = &column
	p.columns[column.Name] = column.Name
	//
	if column.Alias != "" && column.Alias != column.Name {
		if _, ok := p.columns[column.Alias]; ok {
			return fmt.Errorf("schema \"%s\": duplicate column \"%s\"", p.name, column.Alias)
		}
		//
		p.columns[column.Alias] = column.Name
	}
	//
	return nil
}

// AddSet declares a new column set, or fails if its name or any member name
// is already taken.
func (p *Schema) AddSet(set ColumnSet) error {
	if err := p.declare(set.Name); err != nil {
		return err
	}
	//
	for _, m := range set.Members {
		if _, ok := p.columns[m]; ok {
			return fmt.Errorf("schema \"%s\": duplicate column \"%s\"", p.name, m)
		}
	}
	//
	p.attrs = append(p.attrs, set.Name)
	p.members[set.Name] = &set
	//
	if set.IsRegex() {
		p.regexes = append(p.regexes, &set)
	} else {
		for _, m := range set.Members {
			p.columns[m] = set.Name
		}
	}
	//
	return nil
}

// AddGroup declares a new column group over existing members, or fails if
// its name is taken or any referenced member is missing.
func (p *Schema) AddGroup(name string, refs []string) error {
	if err := p.declare(name); err != nil {
		return err
	}
	//
	group := &ColumnGroup{Name: name}
	//
	for _, ref := range refs {
		switch member := p.members[ref].(type) {
		case *Column:
			group.Columns = append(group.Columns, member.Name)
		case *ColumnSet:
			group.Sets = append(group.Sets, member)
		default:
			return fmt.Errorf("schema \"%s\": group \"%s\" references unknown member \"%s\"", p.name, name, ref)
		}
	}
	//
	p.attrs = append(p.attrs, name)
	p.members[name] = group
	//
	return nil
}

func (p *Schema) declare(name string) error {
	if _, ok := p.members[name]; ok {
		return fmt.Errorf("schema \"%s\": duplicate member \"%s\"", p.name, name)
	}
	//
	if _, ok := p.columns[name]; ok {
		return fmt.Errorf("schema \"%s\": duplicate column \"%s\"", p.name, name)
	}
	//
	return nil
}

// Member resolves an attribute name to its member declaration.
func (p *Schema) Member(attr string) (Member, bool) {
	member, ok := p.members[attr]
	return member, ok
}

// Attributes returns the attribute names of this schema in declaration
// order.
func (p *Schema) Attributes() []string {
	attrs := make([]string, len(p.attrs))
	copy(attrs, p.attrs)
	//
	return attrs
}

// Has determines whether a given column name is explicitly declared, either
// as a column, a column alias, or a member of an explicit column set.
func (p *Schema) Has(name string) bool {
	_, ok := p.columns[name]
	return ok
}

// MatchesRegex determines whether a given column name is accepted by one of
// the regex column sets of this schema.
func (p *Schema) MatchesRegex(name string) bool {
	for _, set := range p.regexes {
		if set.Pattern.MatchString(name) {
			return true
		}
	}
	//
	return false
}

// Accepts determines whether a reference to a given column name is valid
// against this schema.
func (p *Schema) Accepts(name string) bool {
	return p.allowExtra || p.Has(name) || p.MatchesRegex(name)
}

// Regexes returns the regex column sets of this schema, in declaration
// order.
func (p *Schema) Regexes() []*ColumnSet {
	return p.regexes
}

// Columns returns the explicitly declared column names of this schema, in
// declaration order.  Members of regex sets are (necessarily) absent.
func (p *Schema) Columns() []string {
	var names []string
	//
	for _, attr := range p.attrs {
		switch member := p.members[attr].(type) {
		case *Column:
			names = append(names, member.Name)
		case *ColumnSet:
			if !member.IsRegex() {
				names = append(names, member.Members...)
			}
		}
	}
	//
	return names
}

// ColumnOf resolves a column name (or alias) to its column declaration, when
// it names a plain column.
func (p *Schema) ColumnOf(name string) (*Column, bool) {
	attr, ok := p.columns[name]
	if !ok {
		return nil, false
	}
	//
	column, ok := p.members[attr].(*Column)
	//
	return column, ok
}

// Combine produces the union of this schema and another, with members of
// this schema first.  A column declared by both is merged silently when its
// type and nullability agree on both sides; otherwise combination fails with
// a Conflict.
func (p *Schema) Combine(other *Schema) (*Schema, error) {
	combined := New(p.name+"+"+other.name, p.allowExtra || other.allowExtra)
	//
	for _, schema := range []*Schema{p, other} {
		for _, attr := range schema.attrs {
			member := schema.members[attr]
			// Check for overlap with an existing member.
			existing, ok := combined.members[attr]
			//
			if !ok {
				if err := combined.adopt(member); err != nil {
					return nil, err
				}
				//
				continue
			}
			//
			if err := mergeable(existing, member); err != nil {
				return nil, err
			}
		}
	}
	//
	return combined, nil
}

// adopt installs a member of a source schema into the combined schema,
// surfacing a Conflict when a column of the same name already exists with a
// different shape.
func (p *Schema) adopt(member Member) error {
	switch m := member.(type) {
	case *Column:
		if attr, ok := p.columns[m.Name]; ok {
			if existing, isColumn := p.members[attr].(*Column); isColumn && !existing.Compatible(m) {
				return &Conflict{m.Name, *existing, *m}
			}
			//
			return nil
		}
		//
		return p.AddColumn(*m)
	case *ColumnSet:
		return p.AddSet(*m)
	case *ColumnGroup:
		refs := make([]string, 0, len(m.Columns)+len(m.Sets))
		refs = append(refs, m.Columns...)
		//
		for _, set := range m.Sets {
			refs = append(refs, set.Name)
		}
		//
		return p.AddGroup(m.Name, refs)
	}
	//
	return nil
}

// mergeable checks whether two same-named members can coexist silently.
func mergeable(left Member, right Member) error {
	lcol, lok := left.(*Column)
	rcol, rok := right.(*Column)
	//
	if lok && rok {
		if lcol.Compatible(rcol) {
			return nil
		}
		//
		return &Conflict{lcol.Name, *lcol, *rcol}
	}
	// Identically named sets merge when their types agree, keeping the left
	// set (members and patterns are not compared); identically named groups
	// always merge, keeping the left group.  Anything else is reported
	// against the shared name.
	lset, lok := left.(*ColumnSet)
	rset, rok := right.(*ColumnSet)
	//
	if lok && rok && lset.Type == rset.Type {
		return nil
	}
	//
	if _, lok := left.(*ColumnGroup); lok {
		if _, rok := right.(*ColumnGroup); rok {
			return nil
		}
	}
	//
	return &Conflict{left.MemberName(), Column{Name: left.MemberName()}, Column{Name: right.MemberName()}}
}
