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
package source

import (
	"fmt"
	"os"
)

// ReadFiles reads a given set of source files, or produces an error.
func ReadFiles(filenames ...string) ([]File, error) {
	files := make([]File, len(filenames))
	//
	for i, n := range filenames {
		bytes, err := os.ReadFile(n)
		if err != nil {
			return nil, err
		}
		//
		files[i] = *NewSourceFile(n, bytes)
	}
	//
	return files, nil
}

// File represents a given source file (typically stored on disk).
type File struct {
	// File name for this source file.
	filename string
	// Contents of this file.
	contents []rune
	// Offsets of the first character of each line, in ascending order.  Line
	// one starts at offset zero, always.
	lines []int
}

// NewSourceFile constructs a new source file from a given byte array.
func NewSourceFile(filename string, bytes []byte) *File {
	// Convert bytes into runes for easier parsing
	contents := []rune(string(bytes))
	// Determine where each line begins
	lines := []int{0}
	//
	for i, c := range contents {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	//
	return &File{filename, contents, lines}
}

// Filename returns the filename associated with this source file.
func (p *File) Filename() string {
	return p.filename
}

// Contents returns the contents of this source file.
func (p *File) Contents() []rune {
	return p.contents
}

// Location translates a character offset into a (line, column) pair, both
// counting from one.  Offsets beyond the end of the file map onto the last
// physical line.
func (p *File) Location(offset int) (int, int) {
	line := 0
	// Find last line starting at or before offset.
	for line+1 < len(p.lines) && p.lines[line+1] <= offset {
		line++
	}
	//
	return line + 1, offset - p.lines[line] + 1
}

// Line returns the text of a given line (counting from one), without its
// terminating newline.
func (p *File) Line(number int) string {
	start := p.lines[number-1]
	end := len(p.contents)
	//
	if number < len(p.lines) {
		end = p.lines[number] - 1
	}
	//
	return string(p.contents[start:end])
}

// SyntaxError constructs a syntax error over a given span of this file with a
// given message.
func (p *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{p, span, msg}
}

// SyntaxError is a structured error which retains the span of the original
// string where an error occurred, along with an error message.
type SyntaxError struct {
	srcfile *File
	// Span of the string being parsed where the error arose.
	span Span
	// Error message being reported
	msg string
}

// SourceFile returns the underlying source file that this syntax error covers.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	line, col := p.srcfile.Location(p.span.start)
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.filename, line, col, p.msg)
}
