package core

import (
	"fmt"
	"go/token"
)

// EditKind tells how the end of a RemovalRange was derived.
type EditKind int

const (
	// CharRange ends exactly at the start of the following element.
	CharRange EditKind = iota
	// TokenRange ends right after the last token of an element.
	TokenRange
)

// String returns the name of the edit kind
func (k EditKind) String() string {
	switch k {
	case CharRange:
		return "char"
	case TokenRange:
		return "token"
	default:
		return "unknown"
	}
}

// RemovalRange is the half-open span [Pos, End) deleted to drop one element
// of a comma-separated list, separator included.
type RemovalRange struct {
	Pos  token.Pos
	End  token.Pos
	Kind EditKind
}

// Offsets resolves the range to a file name and byte offsets.
func (r RemovalRange) Offsets(fset *token.FileSet) (string, int, int, error) {
	if !r.Pos.IsValid() || !r.End.IsValid() || r.End < r.Pos {
		return "", 0, 0, fmt.Errorf("invalid removal range [%d, %d)", r.Pos, r.End)
	}
	file := fset.File(r.Pos)
	if file == nil || fset.File(r.End) != file {
		return "", 0, 0, fmt.Errorf("removal range [%d, %d) spans files", r.Pos, r.End)
	}
	return file.Name(), file.Offset(r.Pos), file.Offset(r.End), nil
}

// Edit replaces the bytes [Start, End) of a file with NewText.
type Edit struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"new_text"`
}

// IsDeletion reports whether the edit only removes text
func (e Edit) IsDeletion() bool {
	return e.NewText == ""
}

// Fix is a set of edits to one file that resolves a violation
type Fix struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
	Edits   []Edit `json:"edits"`
}

// NewRemovalFix builds a single-deletion fix from a removal range.
func NewRemovalFix(fset *token.FileSet, message string, r RemovalRange) (*Fix, error) {
	file, start, end, err := r.Offsets(fset)
	if err != nil {
		return nil, err
	}
	return &Fix{
		File:    file,
		Line:    fset.Position(r.Pos).Line,
		Message: message,
		Edits:   []Edit{{Start: start, End: end}},
	}, nil
}
