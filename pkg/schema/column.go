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
package schema

import (
	"errors"
	"regexp"
)

// ErrRegexExpansion is reported on any attempt to enumerate the members of a
// regex column set.
var ErrRegexExpansion = errors.New("regex column set cannot be expanded")

// Column is a single named, typed column.
type Column struct {
	// Name of this column (always non-empty).
	Name string
	// Type tag for this column.
	Type Type
	// Nullable indicates whether null values are permitted.
	Nullable bool
	// Alias provides an optional secondary name.
	Alias string
}

// Compatible determines whether two columns of the same name can be merged
// silently (identical type and nullability).
func (p *Column) Compatible(other *Column) bool {
	return p.Type == other.Type && p.Nullable == other.Nullable
}

// ColumnSet is a group of columns sharing one type.  A set is either
// explicit, with a finite list of member names, or a regex set whose members
// are only known at runtime.
type ColumnSet struct {
	// Name of this set within its schema.
	Name string
	// Type shared by every member.
	Type Type
	// Members of an explicit set, in declaration order.
	Members []string
	// Pattern of a regex set.  Exactly one of Members / Pattern is set.
	Pattern *regexp.Regexp
}

// IsRegex reports whether this is a regex set.
func (p *ColumnSet) IsRegex() bool {
	return p.Pattern != nil
}

// Matches determines whether a given column name is accepted by this set.
func (p *ColumnSet) Matches(name string) bool {
	if p.IsRegex() {
		return p.Pattern.MatchString(name)
	}
	//
	for _, m := range p.Members {
		if m == name {
			return true
		}
	}
	//
	return false
}

// Expand returns the member names of an explicit set, or fails for a regex
// set whose members cannot be enumerated.
func (p *ColumnSet) Expand() ([]string, error) {
	if p.IsRegex() {
		return nil, ErrRegexExpansion
	}
	//
	names := make([]string, len(p.Members))
	copy(names, p.Members)
	//
	return names, nil
}

// ColumnGroup is a logical bundle of columns and explicit column sets,
// providing ergonomic access to several members at once.
type ColumnGroup struct {
	// Name of this group within its schema.
	Name string
	// Columns bundled directly.
	Columns []string
	// Sets bundled by reference.
	Sets []*ColumnSet
}

// Expand flattens this group into the list of column names it covers.  The
// expansion fails if any bundled set is a regex set.
func (p *ColumnGroup) Expand() ([]string, error) {
	names := make([]string, 0, len(p.Columns))
	names = append(names, p.Columns...)
	//
	for _, set := range p.Sets {
		members, err := set.Expand()
		if err != nil {
			return nil, err
		}
		//
		names = append(names, members...)
	}
	//
	return names, nil
}
