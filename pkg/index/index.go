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

// Package index builds the cross-file project index: a read-only map from
// module qualified names to their declared schemas, annotated function
// signatures and import tables.  The index is constructed in a dedicated
// phase before analysis and frozen thereafter; it never executes source
// code.
package index

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/w-martin/pandas-column-linter/pkg/diag"
	"github.com/w-martin/pandas-column-linter/pkg/pylang"
	"github.com/w-martin/pandas-column-linter/pkg/schema"
	"github.com/w-martin/pandas-column-linter/pkg/util/source"
)

// Index maps module qualified names to their indexed records.
type Index struct {
	modules map[string]*Module
	// Module names in sorted order.
	names []string
}

// Module is the indexed record of a single source module.
type Module struct {
	// Qualified name of this module, e.g. "pipelines.ingest".
	Path string
	// Schemas declared at module level, keyed by class name.
	Schemas map[string]*schema.Schema
	// Functions declared at module level, keyed by name.
	Functions map[string]*Function
	// Imports maps local aliases onto qualified dotted targets.
	Imports map[string]string
}

// Function records the annotation surface of a module-level function.  The
// annotations are retained unresolved; resolution happens at analysis time
// against the importing file.
type Function struct {
	// Name of this function.
	Name string
	// Params holds each parameter with its (possibly nil) annotation.
	Params []ParamSig
	// Return annotation, possibly nil.
	Return pylang.Expr
}

// ParamSig is one parameter of an indexed function signature.
type ParamSig struct {
	Name       string
	Annotation pylang.Expr
}

// Empty constructs an index containing no modules, as used when cross-file
// lookup is disabled.
func Empty() *Index {
	return &Index{modules: make(map[string]*Module)}
}

// Module looks up the record of a given module qualified name.
func (p *Index) Module(path string) (*Module, bool) {
	module, ok := p.modules[path]
	return module, ok
}

// Modules returns the qualified names of all indexed modules, sorted.
func (p *Index) Modules() []string {
	return p.names
}

// LookupSchema resolves a fully qualified schema name ("pkg.mod.Name") to
// its declaration.
func (p *Index) LookupSchema(qualified string) (*schema.Schema, bool) {
	modpath, name, ok := splitQualified(qualified)
	if !ok {
		return nil, false
	}
	//
	if module, ok := p.modules[modpath]; ok {
		if s, ok := module.Schemas[name]; ok {
			return s, true
		}
	}
	//
	return nil, false
}

// LookupFunction resolves a fully qualified function name ("pkg.mod.fn") to
// its indexed signature, together with its defining module.
func (p *Index) LookupFunction(qualified string) (*Function, *Module, bool) {
	modpath, name, ok := splitQualified(qualified)
	if !ok {
		return nil, nil, false
	}
	//
	if module, ok := p.modules[modpath]; ok {
		if fn, ok := module.Functions[name]; ok {
			return fn, module, true
		}
	}
	//
	return nil, nil, false
}

func splitQualified(qualified string) (string, string, bool) {
	i := strings.LastIndex(qualified, ".")
	if i <= 0 || i+1 == len(qualified) {
		return "", "", false
	}
	//
	return qualified[:i], qualified[i+1:], true
}

// Scan builds an index over every source file beneath the given roots.  A
// syntactically invalid file contributes one file-level diagnostic and is
// otherwise skipped; the rest of the index remains usable.  Scanning is
// single-pass and file-order-independent.
func Scan(ctx context.Context, collector *diag.Collector, roots ...string) (*Index, error) {
	idx := Empty()
	//
	files, err := discover(roots)
	if err != nil {
		return nil, err
	}
	//
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		//
		srcfiles, err := source.ReadFiles(file.path)
		if err != nil {
			return nil, err
		}
		//
		parsed, serr := pylang.Parse(&srcfiles[0])
		//
		if serr != nil {
			collector.ReportSpan(serr.SourceFile(), serr.Span(), diag.ParseError, serr.Message())
			continue
		}
		//
		log.Debugf("indexing module %s (%s)", file.module, file.path)
		//
		idx.add(Extract(file.module, parsed, collector))
	}
	//
	for name := range idx.modules {
		idx.names = append(idx.names, name)
	}
	//
	sort.Strings(idx.names)
	//
	return idx, nil
}

func (p *Index) add(module *Module) {
	// When two files map onto one module name, both are indexed; later
	// declarations of a given name shadow earlier ones deterministically
	// (files arrive in sorted path order).
	if existing, ok := p.modules[module.Path]; ok {
		for name, s := range module.Schemas {
			existing.Schemas[name] = s
		}
		//
		for name, fn := range module.Functions {
			existing.Functions[name] = fn
		}
		//
		for alias, target := range module.Imports {
			existing.Imports[alias] = target
		}
		//
		return
	}
	//
	p.modules[module.Path] = module
}

// Files locates every analyzable file beneath the given roots, sorted by
// path.
func Files(roots ...string) ([]string, error) {
	found, err := discover(roots)
	if err != nil {
		return nil, err
	}
	//
	paths := make([]string, len(found))
	//
	for i, file := range found {
		paths[i] = file.path
	}
	//
	return paths, nil
}

type discovered struct {
	path   string
	module string
}

// discover locates every analyzable file beneath the given roots, pairing
// each with its module qualified name and sorting by path for determinism.
func discover(roots []string) ([]discovered, error) {
	var files []discovered
	//
	for _, root := range roots {
		found, err := discoverRoot(root)
		if err != nil {
			return nil, err
		}
		//
		files = append(files, found...)
	}
	//
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	//
	return files, nil
}

func discoverRoot(root string) ([]discovered, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	// A root which is itself a file indexes as a bare module.
	if !info.IsDir() {
		return []discovered{{root, ModuleName(filepath.Base(root))}}, nil
	}
	//
	var files []discovered
	//
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		//
		if entry.IsDir() || !strings.HasSuffix(path, ".py") {
			return nil
		}
		//
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		//
		files = append(files, discovered{path, ModuleName(rel)})
		//
		return nil
	})
	//
	if err != nil {
		return nil, err
	}
	//
	return files, nil
}

// ModuleName derives a module qualified name from a root-relative file path.
func ModuleName(rel string) string {
	name := strings.TrimSuffix(filepath.ToSlash(rel), ".py")
	name = strings.TrimSuffix(name, "/__init__")
	// A root-level __init__ file (or the root itself) is named "__init__".
	if name == "." || name == "__init__" {
		name = "__init__"
	}
	//
	return strings.ReplaceAll(name, "/", ".")
}
