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
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/w-martin/pandas-column-linter/pkg/analyzer"
	"github.com/w-martin/pandas-column-linter/pkg/config"
	"github.com/w-martin/pandas-column-linter/pkg/diag"
	"github.com/w-martin/pandas-column-linter/pkg/index"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] path...",
	Short: "Check column references in the given files or directories.",
	Long: `Check column references in the given files or directories.
	Directories are searched recursively.  Diagnostics are reported
	in a stable, editor-parseable order.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		// Project configuration arrives as a flat options bag; a config
		// error aborts before any analysis begins.
		options, err := config.Parse(optionsTable(GetStringArray(cmd, "set")))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		// Flags override the configured options.
		if GetFlag(cmd, "strict-ingest") {
			options.StrictIngest = true
		}
		//
		if GetFlag(cmd, "no-index") {
			options.NoIndex = true
		}
		//
		if GetFlag(cmd, "no-warnings") {
			options.Warnings = false
		}
		//
		format := GetString(cmd, "output-format")
		strict := GetFlag(cmd, "strict")
		//
		diags, err := Check(context.Background(), options, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		//
		colorize := term.IsTerminal(int(os.Stdout.Fd()))
		//
		if err := Render(os.Stdout, format, colorize, diags); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		//
		os.Exit(exitCode(diags, strict))
	},
}

// optionsTable turns repeated "key=value" settings into the flat options
// bag.  A bare key stands for "true".
func optionsTable(entries []string) map[string]string {
	table := make(map[string]string, len(entries))
	//
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		//
		if !found {
			value = "true"
		}
		//
		table[key] = value
	}
	//
	return table
}

// Check runs the full analysis pipeline over the given roots: discover
// files, build the project index (one read-only phase), then analyze every
// file in parallel and merge the results into the stable order.
func Check(ctx context.Context, options config.Options, roots []string) ([]diag.Diagnostic, error) {
	files, err := index.Files(roots...)
	if err != nil {
		return nil, err
	}
	// Index-phase diagnostics (parse failures, schema conflicts) are merged
	// with the per-file results; exact duplicates collapse.
	collector := diag.NewCollector(options.Enabled, options.Warnings, options.StrictIngest)
	//
	idx := index.Empty()
	//
	if !options.NoIndex {
		if idx, err = index.Scan(ctx, collector, roots...); err != nil {
			return nil, err
		}
	}
	//
	engine := analyzer.New(options, idx)
	// Files are analyzed in parallel; each analyzer holds an immutable
	// handle on the index and no shared mutable state.
	group, ctx := errgroup.WithContext(ctx)
	results := make([][]diag.Diagnostic, len(files))
	//
	for i, file := range files {
		group.Go(func() error {
			// Cancellation is checked before each file.
			if err := ctx.Err(); err != nil {
				return err
			}
			//
			found, err := engine.AnalyzeFile(ctx, file)
			results[i] = found
			//
			return err
		})
	}
	//
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	merged := collector.Diagnostics()
	//
	for _, result := range results {
		merged = append(merged, result...)
	}
	//
	return diag.Finalise(merged), nil
}

// exitCode determines the process exit code for a set of rendered
// diagnostics.  Suppressed warnings never reach this point, so strict mode
// only promotes what remains after the --no-warnings filter.
func exitCode(diags []diag.Diagnostic, strict bool) int {
	warnings := 0
	//
	for _, d := range diags {
		if d.Severity == diag.Error {
			return 1
		}
		//
		warnings++
	}
	//
	if strict && warnings > 0 {
		return 1
	}
	//
	return 0
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("strict-ingest", false, "warn on loads and drops without column information")
	checkCmd.Flags().Bool("no-index", false, "disable the cross-file project index")
	checkCmd.Flags().Bool("no-warnings", false, "suppress warning-severity diagnostics")
	checkCmd.Flags().Bool("strict", false, "exit non-zero on warnings as well as errors")
	checkCmd.Flags().String("output-format", "text", "output format (text, json or github)")
	checkCmd.Flags().StringArray("set", nil, "set a configuration option (key=value)")
	checkCmd.Flags().BoolP("verbose", "v", false, "increase logging verbosity")
}
