// Package source holds source text and the positions that point into it.
// Script functions carry a Location; configuration errors carry the file
// they were read from.
package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceFile is a named piece of source text.
type SourceFile struct {
	Name    string // shown in messages, e.g. "lib.js" or "<config>"
	Path    string // empty for in-memory text
	Content string

	lines []string
}

func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{Name: name, Path: path, Content: content}
}

// FromFile names the source after the last element of filePath.
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// InMemory creates a source with no backing file, displayed as <name>.
func InMemory(name, content string) *SourceFile {
	return NewSourceFile("<"+name+">", "", content)
}

func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line n, or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// DisplayPath prefers the full path and falls back to the name.
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// Location is the opaque position metadata attached to script functions.
// The object model only carries it into exception traces.
type Location struct {
	File     *SourceFile
	Line     int // 1-based
	Column   int // 1-based
	Function string
}

func (l Location) IsZero() bool {
	return l.File == nil && l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	file := "<unknown>"
	if l.File != nil {
		file = l.File.DisplayPath()
	}
	name := l.Function
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s (%s:%d:%d)", name, file, l.Line, l.Column)
}
