package errors

import "objmodel/pkg/source"

// Position represents a specific location in a source or configuration file.
// Line and column are 1-based; a zero Line means the position is unknown.
type Position struct {
	Line   int                // 1-based line number
	Column int                // 1-based column number
	Source *source.SourceFile // Reference to the file, if known
}

func (p Position) IsKnown() bool { return p.Line > 0 }
