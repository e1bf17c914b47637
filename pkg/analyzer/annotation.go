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
	"strings"

	"github.com/w-martin/pandas-column-linter/pkg/index"
	"github.com/w-martin/pandas-column-linter/pkg/pylang"
	"github.com/w-martin/pandas-column-linter/pkg/schema"
)

// frameTypeNames is the closed list of frame class names recognised in
// annotations.  Matching is structural, on the final dotted segment, so any
// import alias works.
var frameTypeNames = map[string]bool{
	"DataFrame": true,
	"LazyFrame": true,
}

// recognizeFrameAnnotation recognises the annotation shape "frame type
// parameterized by a schema reference".  The first result is the schema
// reference expression, which is nil for a bare (unparameterized) frame
// annotation.
func recognizeFrameAnnotation(annotation pylang.Expr) (pylang.Expr, bool) {
	switch a := annotation.(type) {
	case *pylang.Subscript:
		if name, ok := pylang.FinalName(a.Base); ok && frameTypeNames[name] {
			return a.Index, true
		}
	case *pylang.Name, *pylang.Attribute:
		if name, _ := pylang.FinalName(a); frameTypeNames[name] {
			return nil, true
		}
	case *pylang.String:
		// Forward references arrive quoted; unwrap and retry.
		return recognizeFrameAnnotation(&pylang.Name{Ident: a.Value})
	}
	//
	return nil, false
}

// resolver resolves schema references appearing in one module, against (in
// order) the module's own schema declarations, its import table, and the
// project index.
type resolver struct {
	// Record of the module the reference appears in.
	local *index.Module
	// Project index, possibly empty.
	idx *index.Index
}

// resolveSchema resolves a schema reference expression to a concrete schema,
// or fails silently.
func (p *resolver) resolveSchema(ref pylang.Expr) (*schema.Schema, bool) {
	// Quoted forward references are accepted anywhere a name is.
	if s, ok := ref.(*pylang.String); ok {
		return p.resolveDotted(s.Value)
	}
	//
	if dotted, ok := pylang.DottedName(ref); ok {
		return p.resolveDotted(dotted)
	}
	//
	return nil, false
}

func (p *resolver) resolveDotted(dotted string) (*schema.Schema, bool) {
	first, rest, qualified := strings.Cut(dotted, ".")
	// Local declaration in the current module.
	if !qualified {
		if s, ok := p.local.Schemas[first]; ok {
			return s, true
		}
	}
	// Mapping through the import table.
	if target, ok := p.local.Imports[first]; ok {
		resolved := target
		//
		if qualified {
			resolved = target + "." + rest
		}
		//
		if s, ok := p.idx.LookupSchema(resolved); ok {
			return s, true
		}
	}
	// Fully qualified name, directly.
	if s, ok := p.idx.LookupSchema(dotted); ok {
		return s, true
	}
	//
	return nil, false
}

// resolveAnnotation resolves a (possibly nil) type annotation to a binding
// state, or reports that the annotation is not frame-shaped at all.
func (p *resolver) resolveAnnotation(annotation pylang.Expr) (*State, bool) {
	if annotation == nil {
		return nil, false
	}
	//
	ref, ok := recognizeFrameAnnotation(annotation)
	if !ok {
		return nil, false
	}
	//
	if ref != nil {
		if s, ok := p.resolveSchema(ref); ok {
			return NewSchema(s), true
		}
	}
	// Unresolvable (or absent) schema references degrade silently.
	return NewUnknown(), true
}

// resolveFunction resolves a callee expression to an indexed function
// signature, searching the current module's functions, then the import
// table, then the project index by fully qualified name.  The defining
// module is returned alongside, since the function's annotations must be
// resolved in its own context.
func (p *resolver) resolveFunction(callee pylang.Expr) (*index.Function, *index.Module, bool) {
	dotted, ok := pylang.DottedName(callee)
	if !ok {
		return nil, nil, false
	}
	//
	first, rest, qualified := strings.Cut(dotted, ".")
	//
	if !qualified {
		if fn, ok := p.local.Functions[first]; ok {
			return fn, p.local, true
		}
	}
	//
	if target, ok := p.local.Imports[first]; ok {
		resolved := target
		//
		if qualified {
			resolved = target + "." + rest
		}
		//
		if fn, module, ok := p.idx.LookupFunction(resolved); ok {
			return fn, module, true
		}
	}
	//
	if fn, module, ok := p.idx.LookupFunction(dotted); ok {
		return fn, module, true
	}
	//
	return nil, nil, false
}
