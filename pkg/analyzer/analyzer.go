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

// Package analyzer implements the column-set inference engine.  It walks one
// parsed file at a time, tracks a symbolic column set per frame-valued
// binding, applies the method-effect catalogue, and validates every column
// reference it can decide statically.  No state survives beyond one file.
package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/w-martin/pandas-column-linter/pkg/config"
	"github.com/w-martin/pandas-column-linter/pkg/diag"
	"github.com/w-martin/pandas-column-linter/pkg/index"
	"github.com/w-martin/pandas-column-linter/pkg/pylang"
	"github.com/w-martin/pandas-column-linter/pkg/util/source"
)

// Analyzer validates column references across a set of files against an
// immutable project index.  Analyzers are safe for concurrent use, since all
// per-file state lives on the stack of Analyze.
type Analyzer struct {
	options config.Options
	idx     *index.Index
}

// New constructs an analyzer over a given (frozen) project index.  A nil
// index, or the no-index option, disables cross-file lookup.
func New(options config.Options, idx *index.Index) *Analyzer {
	if idx == nil || options.NoIndex {
		idx = index.Empty()
	}
	//
	return &Analyzer{options, idx}
}

// AnalyzeFile reads, parses and analyzes a single file, producing its
// diagnostics in source order.
func (p *Analyzer) AnalyzeFile(ctx context.Context, path string) ([]diag.Diagnostic, error) {
	srcfiles, err := source.ReadFiles(path)
	if err != nil {
		return nil, err
	}
	//
	return p.Analyze(ctx, &srcfiles[0]), nil
}

// Analyze runs the inference engine over one source file.  A file which
// fails to parse yields exactly one file-level diagnostic.
func (p *Analyzer) Analyze(ctx context.Context, srcfile *source.File) []diag.Diagnostic {
	collector := diag.NewCollector(p.options.Enabled, p.options.Warnings, p.options.StrictIngest)
	//
	module, serr := pylang.Parse(srcfile)
	if serr != nil {
		collector.ReportSpan(srcfile, serr.Span(), diag.ParseError, serr.Message())
		return collector.Diagnostics()
	}
	//
	log.Debugf("analyzing %s", srcfile.Filename())
	// Extract the file's own schemas, imports and function signatures, so
	// that local annotations resolve even without the project index.
	local := index.Extract(index.ModuleName(filepath.Base(srcfile.Filename())), module, collector)
	//
	fa := &fileAnalysis{
		ctx:       ctx,
		module:    module,
		collector: collector,
		resolver:  &resolver{local, p.idx},
		idx:       p.idx,
	}
	//
	fa.statements(newScope(nil), module.Body, true)
	//
	return collector.Diagnostics()
}

// fileAnalysis carries the engine state for one file.
type fileAnalysis struct {
	ctx       context.Context
	module    *pylang.Module
	collector *diag.Collector
	resolver  *resolver
	idx       *index.Index
}

// ============================================================================
// Statements
// ============================================================================

func (p *fileAnalysis) statements(sc *scope, body []pylang.Stmt, topLevel bool) {
	for _, stmt := range body {
		// Cancellation is checked between top-level statements.
		if topLevel && p.ctx.Err() != nil {
			return
		}
		//
		p.statement(sc, stmt)
	}
}

func (p *fileAnalysis) statement(sc *scope, stmt pylang.Stmt) {
	switch s := stmt.(type) {
	case *pylang.Assign:
		p.assign(sc, s)
	case *pylang.AnnAssign:
		p.annAssign(sc, s)
	case *pylang.AugAssign:
		p.eval(sc, s.Target, false)
		p.eval(sc, s.Value, false)
	case *pylang.ExprStmt:
		p.eval(sc, s.Value, false)
	case *pylang.Del:
		p.del(sc, s)
	case *pylang.Return:
		if s.Value != nil {
			p.eval(sc, s.Value, false)
		}
	case *pylang.FunctionDef:
		p.function(sc, s)
	case *pylang.ClassDef:
		// Methods and nested declarations are analysed in a child scope of
		// their own.
		p.statements(newScope(sc), s.Body, false)
	case *pylang.If:
		p.branch(sc, s)
	case *pylang.For:
		p.eval(sc, s.Iter, false)
		//
		for _, name := range targetNames(s.Target) {
			sc.bind(name, NewUnknown())
		}
		//
		p.loop(sc, s.Body)
	case *pylang.While:
		p.eval(sc, s.Cond, false)
		p.loop(sc, s.Body)
	}
}

func (p *fileAnalysis) assign(sc *scope, s *pylang.Assign) {
	switch target := s.Target.(type) {
	case *pylang.Name:
		state := p.eval(sc, s.Value, false)
		//
		if state == nil {
			state = NewUnknown()
		}
		// Aliasing copies the state, so the two bindings evolve apart.
		sc.bind(target.Ident, state.Clone())
	case *pylang.Subscript:
		p.eval(sc, s.Value, false)
		p.subscriptAssign(sc, target)
	case *pylang.Tuple:
		p.eval(sc, s.Value, false)
		//
		for _, name := range targetNames(target) {
			sc.bind(name, NewUnknown())
		}
	default:
		p.eval(sc, s.Value, false)
	}
}

// subscriptAssign handles the in-place column addition "df[c] = v".
func (p *fileAnalysis) subscriptAssign(sc *scope, target *pylang.Subscript) {
	base, ok := target.Base.(*pylang.Name)
	if !ok {
		return
	}
	//
	state := sc.lookup(base.Ident)
	if state == nil {
		return
	}
	//
	if name, ok := target.Index.(*pylang.String); ok {
		state.add(name.Value)
	}
}

func (p *fileAnalysis) annAssign(sc *scope, s *pylang.AnnAssign) {
	if state, isFrame := p.resolver.resolveAnnotation(s.Annotation); isFrame {
		if state.Kind() == HasSchema {
			// The annotation wins over whatever the right-hand side would
			// infer; it is still evaluated, minus the bare-load warning.
			if s.Value != nil {
				p.eval(sc, s.Value, true)
			}
			//
			sc.bind(s.Target.Ident, state)
			//
			return
		}
	}
	//
	if s.Value == nil {
		sc.bind(s.Target.Ident, NewUnknown())
		return
	}
	//
	state := p.eval(sc, s.Value, false)
	//
	if state == nil {
		state = NewUnknown()
	}
	//
	sc.bind(s.Target.Ident, state.Clone())
}

func (p *fileAnalysis) del(sc *scope, s *pylang.Del) {
	for _, target := range s.Targets {
		switch t := target.(type) {
		case *pylang.Name:
			sc.unbind(t.Ident)
		case *pylang.Subscript:
			base, ok := t.Base.(*pylang.Name)
			if !ok {
				continue
			}
			//
			if name, ok := t.Index.(*pylang.String); ok {
				if state := sc.lookup(base.Ident); state != nil {
					state.remove(name.Value)
				}
			}
		}
	}
}

// function analyses a function body in a fresh scope seeded by its
// parameter states, with the enclosing scope visible read-only.
func (p *fileAnalysis) function(sc *scope, def *pylang.FunctionDef) {
	child := newScope(sc)
	//
	for _, param := range def.Params {
		name := strings.TrimLeft(param.Name, "*")
		//
		if state, isFrame := p.resolver.resolveAnnotation(param.Annotation); isFrame {
			child.bind(name, state)
		} else {
			child.bind(name, NewUnknown())
		}
	}
	//
	p.statements(child, def.Body, false)
}

// branch analyses an if/else, joining the branch frames with the
// conservative meet.
func (p *fileAnalysis) branch(sc *scope, s *pylang.If) {
	p.eval(sc, s.Cond, false)
	//
	entry := sc.snapshot()
	//
	p.statements(sc, s.Body, false)
	//
	thenFrame := sc.bindings
	sc.bindings = entry
	//
	p.statements(sc, s.Orelse, false)
	//
	elseFrame := sc.bindings
	sc.meet(thenFrame, elseFrame)
}

// loop analyses a loop body once (no fixpoint iteration), then joins the
// exit frame with the entry frame since the body may run zero times.
func (p *fileAnalysis) loop(sc *scope, body []pylang.Stmt) {
	entry := sc.snapshot()
	//
	p.statements(sc, body, false)
	//
	sc.meet(entry, sc.bindings)
}

// ============================================================================
// Expressions
// ============================================================================

// eval computes the column-set state of an expression, emitting diagnostics
// for every column reference decided along the way.  It returns nil for
// expressions carrying no frame state.
func (p *fileAnalysis) eval(sc *scope, expr pylang.Expr, annotated bool) *State {
	switch e := expr.(type) {
	case *pylang.Name:
		return sc.lookup(e.Ident)
	case *pylang.Subscript:
		return p.subscript(sc, e)
	case *pylang.Call:
		return p.call(sc, e, annotated)
	case *pylang.Attribute:
		p.eval(sc, e.Base, false)
		return NewUntracked()
	case *pylang.BinOp:
		p.eval(sc, e.Left, false)
		p.eval(sc, e.Right, false)
		//
		return NewUnknown()
	case *pylang.UnaryOp:
		p.eval(sc, e.Operand, false)
		return NewUnknown()
	case *pylang.Starred:
		p.eval(sc, e.Value, false)
		return NewUnknown()
	case *pylang.Lambda:
		p.eval(sc, e.Body, false)
		return NewUnknown()
	case *pylang.List:
		for _, element := range e.Elements {
			p.eval(sc, element, false)
		}
		//
		return NewUnknown()
	case *pylang.Tuple:
		for _, element := range e.Elements {
			p.eval(sc, element, false)
		}
		//
		return NewUnknown()
	case *pylang.Dict:
		for i := range e.Keys {
			p.eval(sc, e.Keys[i], false)
			p.eval(sc, e.Values[i], false)
		}
		//
		return NewUnknown()
	}
	// Literals
	return NewUnknown()
}

// subscript handles the column-reference validation sites "df[name]" and
// "df[[a, b]]", plus row subscripts (masks, slices) which pass the state
// through.
func (p *fileAnalysis) subscript(sc *scope, e *pylang.Subscript) *State {
	state := p.eval(sc, e.Base, false)
	//
	switch index := e.Index.(type) {
	case *pylang.String:
		p.checkColumn(state, index.Value, index.Span())
		// A single column is a series, not a frame.
		return NewUntracked()
	case *pylang.List:
		if names, ok := stringElements(index.Elements); ok {
			for i, element := range index.Elements {
				p.checkColumn(state, names[i], element.Span())
			}
			//
			if state != nil {
				// Projection narrows a fresh state; the receiver is not
				// mutated.
				return state.narrowed(names)
			}
			//
			return NewUnknown()
		}
	}
	// Row subscript: boolean mask, slice, etc.
	p.eval(sc, e.Index, false)
	//
	return state
}

// call dispatches over the call forms the engine recognises: load calls,
// module-level combinators, indexed functions, and method calls on stated
// receivers.  Anything unfamiliar produces an untracked result.
func (p *fileAnalysis) call(sc *scope, e *pylang.Call, annotated bool) *State {
	if qualified, ok := p.libraryCall(e.Fn); ok {
		if loadFunctions[qualified] {
			return p.loadCall(e, annotated)
		}
		//
		if combineFunctions[qualified] {
			return p.combineCall(sc, e, strings.HasSuffix(qualified, ".merge"))
		}
	}
	// Calls to functions with indexed signatures adopt the annotated return
	// state.
	if fn, module, ok := p.resolver.resolveFunction(e.Fn); ok {
		p.evalArguments(sc, e)
		// Return annotations resolve in the defining module's context.
		remote := &resolver{module, p.idx}
		//
		if state, isFrame := remote.resolveAnnotation(fn.Return); isFrame {
			return state
		}
		//
		return NewUntracked()
	}
	// Method calls on frame-stated receivers follow the effect catalogue.
	if attr, ok := e.Fn.(*pylang.Attribute); ok {
		receiver := p.eval(sc, attr.Base, false)
		return p.methodCall(sc, receiver, attr.Attr, e)
	}
	//
	p.evalArguments(sc, e)
	//
	return NewUntracked()
}

// libraryCall resolves a callee against the load / combine catalogues,
// producing its canonical qualified name.  Attribute callees must resolve
// through the import table; bare names fall back onto the closed list of
// well-known function names.
func (p *fileAnalysis) libraryCall(fn pylang.Expr) (string, bool) {
	switch callee := fn.(type) {
	case *pylang.Name:
		if target, ok := p.resolver.local.Imports[callee.Ident]; ok {
			return target, loadFunctions[target] || combineFunctions[target]
		}
		//
		if qualified, ok := bareNames[callee.Ident]; ok {
			return qualified, true
		}
	case *pylang.Attribute:
		base, ok := callee.Base.(*pylang.Name)
		if !ok {
			return "", false
		}
		//
		if target, ok := p.resolver.local.Imports[base.Ident]; ok {
			qualified := target + "." + callee.Attr
			return qualified, loadFunctions[qualified] || combineFunctions[qualified]
		}
	}
	//
	return "", false
}

// loadCall applies the load catalogue: column-bearing keyword arguments are
// inspected for literal lists and mappings; a load with no usable column
// information is a bare load.
func (p *fileAnalysis) loadCall(e *pylang.Call, annotated bool) *State {
	for _, kwarg := range e.Kwargs {
		if !columnKwargs[kwarg.Name] {
			continue
		}
		//
		switch value := kwarg.Value.(type) {
		case *pylang.List:
			if names, ok := stringElements(value.Elements); ok {
				return NewInferred(names)
			}
		case *pylang.Dict:
			if names, ok := stringElements(value.Keys); ok {
				return NewInferred(names)
			}
		}
	}
	// A resolvable annotation at the binding site supersedes the load call,
	// in which case the bare-load warning makes no sense.
	if !annotated {
		p.collector.ReportSpan(p.module.File, e.Span(), diag.BareLoad,
			"load call carries no column information")
	}
	//
	return NewUnknown()
}

// combineCall handles module-level merge / concat, producing the union of
// the input states.
func (p *fileAnalysis) combineCall(sc *scope, e *pylang.Call, isMerge bool) *State {
	var inputs []*State
	// concat takes its frames as one list argument.
	if len(e.Args) == 1 {
		if list, ok := e.Args[0].(*pylang.List); ok {
			for _, element := range list.Elements {
				inputs = append(inputs, p.eval(sc, element, false))
			}
		}
	}
	//
	if inputs == nil {
		for _, arg := range e.Args {
			inputs = append(inputs, p.eval(sc, arg, false))
		}
	}
	//
	if isMerge && len(inputs) >= 2 {
		p.checkMergeKeys(e, inputs[0], inputs[1])
	}
	//
	for _, kwarg := range e.Kwargs {
		if _, ok := mergeKeyKwargs[kwarg.Name]; !ok {
			p.eval(sc, kwarg.Value, false)
		}
	}
	//
	return unionStates(inputs)
}

// unionStates folds the input states of a combination into the result
// state.  Two schema inputs attempt a schema combine; on conflict the union
// degrades to the inferred name union without a diagnostic, unlike the
// user-surface combine operator which fails hard.  Mixed inputs degrade to
// inferred; inputs without column information are contagious.
func unionStates(inputs []*State) *State {
	if len(inputs) == 0 {
		return NewUntracked()
	}
	//
	for _, input := range inputs {
		if input == nil || input.Kind() == Unknown {
			return NewUnknown()
		}
		//
		if input.Kind() == Untracked {
			return NewUntracked()
		}
	}
	// All-schema inputs try the schema algebra first.
	if combined, ok := combineSchemas(inputs); ok {
		return combined
	}
	//
	result := NewInferred(nil)
	//
	for _, input := range inputs {
		degraded := input.Clone()
		degraded.degrade()
		//
		for name := range degraded.names {
			result.names[name] = true
		}
		//
		result.regexes = append(result.regexes, degraded.regexes...)
		result.open = result.open || degraded.open
	}
	//
	return result
}

func combineSchemas(inputs []*State) (*State, bool) {
	if inputs[0].Kind() != HasSchema {
		return nil, false
	}
	//
	combined := inputs[0].Schema()
	//
	for _, input := range inputs[1:] {
		if input.Kind() != HasSchema {
			return nil, false
		}
		//
		merged, err := combined.Combine(input.Schema())
		if err != nil {
			// Lenient: the union survives as an inferred name set.
			return nil, false
		}
		//
		combined = merged
	}
	//
	return NewSchema(combined), true
}

// checkMergeKeys validates literal merge keys against the side(s) they bind
// to.
func (p *fileAnalysis) checkMergeKeys(e *pylang.Call, left *State, right *State) {
	for _, kwarg := range e.Kwargs {
		side, ok := mergeKeyKwargs[kwarg.Name]
		if !ok {
			continue
		}
		//
		for _, key := range literalStrings(kwarg.Value) {
			if side != rightSide {
				p.checkColumn(left, key.Value, key.Span())
			}
			//
			if side != leftSide {
				p.checkColumn(right, key.Value, key.Span())
			}
		}
	}
}

// methodCall applies the method-effect catalogue to a receiver state.
func (p *fileAnalysis) methodCall(sc *scope, receiver *State, method string, e *pylang.Call) *State {
	p.evalArguments(sc, e)
	// Expression-builder references validate against the receiver.
	if receiver != nil && receiver.Validatable() {
		for _, ref := range colRefs(e) {
			p.checkColumn(receiver, ref.Value, ref.Span())
		}
	}
	//
	switch {
	case receiver == nil:
		return NewUntracked()
	case passthroughMethods[method]:
		return receiver.Clone()
	case method == "merge" || method == "join":
		// Instance-level combination is untracked, but literal merge keys
		// are still validated against their sides.
		var right *State
		//
		if len(e.Args) > 0 {
			right = p.eval(sc, e.Args[0], false)
		}
		//
		p.checkMergeKeys(e, receiver, right)
		//
		return NewUntracked()
	case untrackedMethods[method]:
		return NewUntracked()
	}
	//
	switch method {
	case "drop":
		return p.dropCall(receiver, e)
	case "assign":
		result := receiver.Clone()
		//
		for _, kwarg := range e.Kwargs {
			if kwarg.Name != "" {
				result.add(kwarg.Name)
			}
		}
		//
		return result
	case "rename":
		return p.renameCall(receiver, e)
	case "select":
		return p.selectCall(receiver, e)
	case "pop":
		// Removes the column from the receiver itself; the result is a
		// series.
		if len(e.Args) > 0 {
			if name, ok := e.Args[0].(*pylang.String); ok {
				receiver.remove(name.Value)
			}
		}
		//
		return NewUntracked()
	case "insert":
		if len(e.Args) > 1 {
			if name, ok := e.Args[1].(*pylang.String); ok {
				receiver.add(name.Value)
			}
		}
		//
		return NewUnknown()
	}
	// Unfamiliar methods do not crash the engine; their result is simply
	// untracked, whilst the receiver keeps its state.
	return NewUntracked()
}

func (p *fileAnalysis) dropCall(receiver *State, e *pylang.Call) *State {
	var names []*pylang.String
	//
	for _, kwarg := range e.Kwargs {
		if kwarg.Name == "columns" {
			names = append(names, literalStrings(kwarg.Value)...)
		}
	}
	//
	for _, arg := range e.Args {
		names = append(names, literalStrings(arg)...)
	}
	//
	result := receiver.Clone()
	//
	for _, name := range names {
		if receiver.Validatable() && !receiver.Accepts(name.Value) {
			p.collector.ReportSpan(p.module.File, name.Span(), diag.AbsentDropTarget,
				fmt.Sprintf("dropping absent column \"%s\"", name.Value))
		}
		//
		result.remove(name.Value)
	}
	//
	return result
}

func (p *fileAnalysis) renameCall(receiver *State, e *pylang.Call) *State {
	var mapping *pylang.Dict
	//
	for _, kwarg := range e.Kwargs {
		if kwarg.Name == "columns" {
			mapping, _ = kwarg.Value.(*pylang.Dict)
		}
	}
	//
	if mapping == nil && len(e.Args) > 0 {
		mapping, _ = e.Args[0].(*pylang.Dict)
	}
	//
	result := receiver.Clone()
	//
	if mapping == nil {
		return result
	}
	//
	for i := range mapping.Keys {
		old, okOld := mapping.Keys[i].(*pylang.String)
		next, okNext := mapping.Values[i].(*pylang.String)
		//
		if !okOld || !okNext {
			continue
		}
		// Renaming an absent column is silently ignored, as the host
		// library does.
		if result.Validatable() && !result.has(old.Value) {
			continue
		}
		//
		result.remove(old.Value)
		result.add(next.Value)
		result.recordRename(old.Value, next.Value)
	}
	//
	return result
}

func (p *fileAnalysis) selectCall(receiver *State, e *pylang.Call) *State {
	var names []string
	//
	for _, arg := range e.Args {
		switch a := arg.(type) {
		case *pylang.String:
			p.checkColumn(receiver, a.Value, a.Span())
			names = append(names, a.Value)
		case *pylang.List:
			for _, ref := range literalStrings(a) {
				p.checkColumn(receiver, ref.Value, ref.Span())
				names = append(names, ref.Value)
			}
		case *pylang.Call:
			// col("x") projections; already validated above.
			for _, ref := range colRefsIn(a) {
				names = append(names, ref.Value)
			}
		}
	}
	//
	return receiver.narrowed(names)
}

// evalArguments evaluates every argument of a call, for its validation side
// effects only.
func (p *fileAnalysis) evalArguments(sc *scope, e *pylang.Call) {
	for _, arg := range e.Args {
		p.eval(sc, arg, false)
	}
	//
	for _, kwarg := range e.Kwargs {
		p.eval(sc, kwarg.Value, false)
	}
}

// checkColumn validates a single column-name reference against a state.
// The rename ledger takes precedence over membership; unknown and untracked
// states are never diagnosed.
func (p *fileAnalysis) checkColumn(state *State, name string, span source.Span) {
	if state == nil || !state.Validatable() {
		return
	}
	//
	if next, ok := state.Renamed(name); ok {
		p.collector.ReportSpan(p.module.File, span, diag.RenamedColumn,
			fmt.Sprintf("column \"%s\" was renamed to \"%s\"", name, next))
		//
		return
	}
	//
	if state.Accepts(name) {
		return
	}
	//
	known := state.Columns()
	message := fmt.Sprintf("unknown column \"%s\" (known columns: %s)", name, strings.Join(known, ", "))
	//
	if suggestion := diag.Suggest(name, known); suggestion != "" {
		message += fmt.Sprintf("; did you mean \"%s\"?", suggestion)
	}
	//
	p.collector.ReportSpan(p.module.File, span, diag.UnknownColumn, message)
}

// ============================================================================
// Helpers
// ============================================================================

// stringElements extracts the values of an all-string expression list.
func stringElements(exprs []pylang.Expr) ([]string, bool) {
	names := make([]string, len(exprs))
	//
	for i, expr := range exprs {
		value, ok := expr.(*pylang.String)
		if !ok {
			return nil, false
		}
		//
		names[i] = value.Value
	}
	//
	return names, len(names) > 0
}

// literalStrings flattens a string literal, or list of string literals,
// into its string nodes.
func literalStrings(expr pylang.Expr) []*pylang.String {
	switch e := expr.(type) {
	case *pylang.String:
		return []*pylang.String{e}
	case *pylang.List:
		var values []*pylang.String
		//
		for _, element := range e.Elements {
			if value, ok := element.(*pylang.String); ok {
				values = append(values, value)
			}
		}
		//
		return values
	}
	//
	return nil
}

// colRefs collects the string arguments of every col("...") builder call
// beneath the arguments of a method call.
func colRefs(e *pylang.Call) []*pylang.String {
	var refs []*pylang.String
	//
	for _, arg := range e.Args {
		refs = append(refs, colRefsIn(arg)...)
	}
	//
	for _, kwarg := range e.Kwargs {
		refs = append(refs, colRefsIn(kwarg.Value)...)
	}
	//
	return refs
}

func colRefsIn(expr pylang.Expr) []*pylang.String {
	var refs []*pylang.String
	//
	switch e := expr.(type) {
	case *pylang.Call:
		if name, ok := pylang.FinalName(e.Fn); ok && name == "col" && len(e.Args) == 1 {
			if value, ok := e.Args[0].(*pylang.String); ok {
				return []*pylang.String{value}
			}
		}
		//
		for _, arg := range e.Args {
			refs = append(refs, colRefsIn(arg)...)
		}
		//
		for _, kwarg := range e.Kwargs {
			refs = append(refs, colRefsIn(kwarg.Value)...)
		}
	case *pylang.BinOp:
		refs = append(refs, colRefsIn(e.Left)...)
		refs = append(refs, colRefsIn(e.Right)...)
	case *pylang.UnaryOp:
		refs = append(refs, colRefsIn(e.Operand)...)
	case *pylang.List:
		for _, element := range e.Elements {
			refs = append(refs, colRefsIn(element)...)
		}
	case *pylang.Tuple:
		for _, element := range e.Elements {
			refs = append(refs, colRefsIn(element)...)
		}
	}
	//
	return refs
}

// targetNames collects the simple names of an assignment or loop target.
func targetNames(expr pylang.Expr) []string {
	switch e := expr.(type) {
	case *pylang.Name:
		return []string{e.Ident}
	case *pylang.Tuple:
		var names []string
		//
		for _, element := range e.Elements {
			names = append(names, targetNames(element)...)
		}
		//
		return names
	}
	//
	return nil
}
