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
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/w-martin/pandas-column-linter/pkg/diag"
	"github.com/w-martin/pandas-column-linter/pkg/pylang"
	"github.com/w-martin/pandas-column-linter/pkg/schema"
)

// SchemaBase is the class every schema declaration ultimately derives from.
const SchemaBase = "Schema"

// Extract builds the indexed record of a single parsed module.  Schema
// declaration problems (conflicting parents or columns, duplicate or unknown
// members) are reported against the declaration site via the given
// collector.  A column set with a malformed pattern is skipped without a
// diagnostic.
func Extract(path string, module *pylang.Module, collector *diag.Collector) *Module {
	record := &Module{
		Path:      path,
		Schemas:   make(map[string]*schema.Schema),
		Functions: make(map[string]*Function),
		Imports:   make(map[string]string),
	}
	//
	for _, stmt := range module.Body {
		switch s := stmt.(type) {
		case *pylang.Import:
			if s.Alias != "" {
				record.Imports[s.Alias] = s.Module
			} else {
				// An unaliased import binds its first segment.
				first, _, _ := strings.Cut(s.Module, ".")
				record.Imports[first] = first
			}
		case *pylang.FromImport:
			for _, name := range s.Names {
				if name.Name == "*" {
					continue
				}
				//
				local := name.Name
				//
				if name.Alias != "" {
					local = name.Alias
				}
				//
				record.Imports[local] = s.Module + "." + name.Name
			}
		case *pylang.ClassDef:
			if extracted := extractSchema(module, s, record.Schemas, collector); extracted != nil {
				record.Schemas[s.Name] = extracted
			}
		case *pylang.FunctionDef:
			if strings.HasPrefix(s.Name, "_") {
				continue
			}
			//
			record.Functions[s.Name] = extractFunction(s)
		}
	}
	//
	return record
}

func extractFunction(def *pylang.FunctionDef) *Function {
	fn := &Function{Name: def.Name, Return: def.Returns}
	//
	for _, param := range def.Params {
		fn.Params = append(fn.Params, ParamSig{param.Name, param.Annotation})
	}
	//
	return fn
}

// extractSchema recognises a schema class declaration and compiles it into a
// schema value, or returns nil for ordinary classes.  A schema class derives
// from the schema base, or from other (locally declared) schema classes.
func extractSchema(module *pylang.Module, class *pylang.ClassDef, locals map[string]*schema.Schema,
	collector *diag.Collector) *schema.Schema {
	//
	var parents []*schema.Schema
	//
	isSchema := false
	//
	for _, base := range class.Bases {
		name, ok := pylang.FinalName(base)
		if !ok {
			continue
		}
		//
		if name == SchemaBase {
			isSchema = true
		} else if parent, ok := locals[name]; ok {
			isSchema = true
			parents = append(parents, parent)
		}
	}
	//
	if !isSchema {
		return nil
	}
	// Multi-parent composition unions the parents, left first.
	combined := schema.New(class.Name, allowsExtra(class))
	//
	for _, parent := range parents {
		merged, err := combined.Combine(parent)
		//
		if conflict, ok := err.(*schema.Conflict); ok {
			collector.ReportSpan(module.File, class.Span(), diag.SchemaConflict,
				"schema \""+class.Name+"\": "+conflict.Error())
			//
			continue
		} else if err != nil {
			collector.ReportSpan(module.File, class.Span(), diag.SchemaConflict,
				"schema \""+class.Name+"\": "+err.Error())
			//
			continue
		}
		// Retain the declared name through the union.
		result := schema.New(class.Name, merged.AllowsExtra())
		adoptAll(result, merged)
		combined = result
	}
	//
	extractMembers(module, class, combined, collector)
	//
	return combined
}

// allowsExtra reads the "allow_extra" keyword of a schema class header.
func allowsExtra(class *pylang.ClassDef) bool {
	for _, kwarg := range class.Kwargs {
		if kwarg.Name == "allow_extra" {
			if value, ok := kwarg.Value.(*pylang.Bool); ok {
				return value.Value
			}
		}
	}
	//
	return false
}

func adoptAll(target *schema.Schema, origin *schema.Schema) {
	for _, attr := range origin.Attributes() {
		member, _ := origin.Member(attr)
		//
		switch m := member.(type) {
		case *schema.Column:
			_ = target.AddColumn(*m)
		case *schema.ColumnSet:
			_ = target.AddSet(*m)
		case *schema.ColumnGroup:
			refs := append([]string{}, m.Columns...)
			//
			for _, set := range m.Sets {
				refs = append(refs, set.Name)
			}
			//
			_ = target.AddGroup(m.Name, refs)
		}
	}
}

// extractMembers compiles the class body into columns, column sets and
// column groups.
func extractMembers(module *pylang.Module, class *pylang.ClassDef, target *schema.Schema,
	collector *diag.Collector) {
	//
	for _, stmt := range class.Body {
		switch s := stmt.(type) {
		case *pylang.AnnAssign:
			column := schema.Column{Name: s.Target.Ident}
			column.Type, column.Nullable = extractType(s.Annotation)
			// Apply "= column(...)" refinements.
			if call, ok := s.Value.(*pylang.Call); ok {
				applyColumnKwargs(&column, call)
			}
			//
			if err := target.AddColumn(column); err != nil {
				reportConflict(module, collector, class, stmt, target, column, err)
			}
		case *pylang.Assign:
			name, ok := s.Target.(*pylang.Name)
			if !ok {
				continue
			}
			//
			call, ok := s.Value.(*pylang.Call)
			if !ok {
				continue
			}
			//
			switch callee, _ := pylang.FinalName(call.Fn); callee {
			case "column_set":
				if set, ok := extractColumnSet(name.Ident, call); ok {
					if err := target.AddSet(set); err != nil {
						collector.ReportSpan(module.File, stmt.Span(), diag.SchemaConflict, err.Error())
					}
				} else {
					log.Debugf("schema %s: unusable column set %s", class.Name, name.Ident)
				}
			case "column_group":
				refs := stringArguments(call.Args)
				//
				if err := target.AddGroup(name.Ident, refs); err != nil {
					collector.ReportSpan(module.File, stmt.Span(), diag.SchemaConflict, err.Error())
				}
			}
		}
	}
}

// reportConflict distinguishes a subclass redeclaring an inherited column
// (silent when compatible, SCHEMA-CONFLICT otherwise) from a plain duplicate.
func reportConflict(module *pylang.Module, collector *diag.Collector, class *pylang.ClassDef,
	stmt pylang.Stmt, target *schema.Schema, column schema.Column, err error) {
	//
	if existing, ok := target.ColumnOf(column.Name); ok {
		if existing.Compatible(&column) {
			return
		}
		//
		conflict := &schema.Conflict{Column: column.Name, Left: *existing, Right: column}
		collector.ReportSpan(module.File, stmt.Span(), diag.SchemaConflict,
			"schema \""+class.Name+"\": "+conflict.Error())
		//
		return
	}
	//
	collector.ReportSpan(module.File, stmt.Span(), diag.SchemaConflict, err.Error())
}

// extractType interprets a type annotation, unwrapping Optional[...] into
// nullability.
func extractType(annotation pylang.Expr) (schema.Type, bool) {
	if subscript, ok := annotation.(*pylang.Subscript); ok {
		if base, ok := pylang.FinalName(subscript.Base); ok && base == "Optional" {
			t, _ := extractType(subscript.Index)
			return t, true
		}
	}
	//
	if name, ok := pylang.FinalName(annotation); ok {
		if t, ok := schema.ParseType(name); ok {
			return t, false
		}
	}
	//
	return schema.AnyType, false
}

func applyColumnKwargs(column *schema.Column, call *pylang.Call) {
	for _, kwarg := range call.Kwargs {
		switch kwarg.Name {
		case "nullable":
			if value, ok := kwarg.Value.(*pylang.Bool); ok {
				column.Nullable = value.Value
			}
		case "alias":
			if value, ok := kwarg.Value.(*pylang.String); ok {
				column.Alias = value.Value
			}
		}
	}
}

func extractColumnSet(name string, call *pylang.Call) (schema.ColumnSet, bool) {
	set := schema.ColumnSet{Name: name}
	//
	if len(call.Args) > 0 {
		if typename, ok := pylang.FinalName(call.Args[0]); ok {
			set.Type, _ = schema.ParseType(typename)
		}
	}
	//
	for _, kwarg := range call.Kwargs {
		switch kwarg.Name {
		case "members":
			if list, ok := kwarg.Value.(*pylang.List); ok {
				set.Members = stringArguments(list.Elements)
			}
		case "pattern":
			if value, ok := kwarg.Value.(*pylang.String); ok {
				pattern, err := regexp.Compile(value.Value)
				if err != nil {
					return set, false
				}
				//
				set.Pattern = pattern
			}
		}
	}
	// Second positional form: column_set(str, ["a", "b"]).
	if set.Members == nil && set.Pattern == nil && len(call.Args) > 1 {
		if list, ok := call.Args[1].(*pylang.List); ok {
			set.Members = stringArguments(list.Elements)
		}
	}
	//
	return set, set.Members != nil || set.Pattern != nil
}

func stringArguments(exprs []pylang.Expr) []string {
	var values []string
	//
	for _, expr := range exprs {
		if value, ok := expr.(*pylang.String); ok {
			values = append(values, value.Value)
		}
	}
	//
	return values
}
