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
	"regexp"
	"strings"
)

// ResolveDescriptor resolves a host-side descriptor path (e.g. "scores" or
// "scores.s", where the trailing accessor is purely a host convenience) to
// the column names it denotes, or to the pattern of a regex set.  Exactly
// one of the two results is meaningful when the final result is true.
func (p *Schema) ResolveDescriptor(path string) ([]string, *regexp.Regexp, bool) {
	attr := path
	// Strip host accessor suffixes.
	for _, suffix := range []string{".s", ".col"} {
		attr = strings.TrimSuffix(attr, suffix)
	}
	//
	member, ok := p.members[attr]
	if !ok {
		return nil, nil, false
	}
	//
	switch m := member.(type) {
	case *Column:
		return []string{m.Name}, nil, true
	case *ColumnSet:
		if m.IsRegex() {
			return nil, m.Pattern, true
		}
		//
		names, _ := m.Expand()
		//
		return names, nil, true
	case *ColumnGroup:
		names, err := m.Expand()
		if err != nil {
			// Groups bundling a regex set have no flat expansion.
			return nil, nil, false
		}
		//
		return names, nil, true
	}
	//
	return nil, nil, false
}
