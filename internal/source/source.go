package source

import (
	"sort"
	"unicode/utf8"
)

// File is a piece of declaration text (a type expression, a manifest file)
// with precomputed line offsets for diagnostics. Origin names where the text
// came from, e.g. "Geometry.Point.x" for a field's type expression.
type File struct {
	Origin      string
	Input       string
	lineOffsets []int // 0-based byte offsets of each line start
}

func NewFile(origin string, input string) *File {
	f := &File{Origin: origin, Input: input}
	f.lineOffsets = []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// LineCol returns 1-based line/column for a byte offset.
// Column is counted in runes, not bytes.
func (f *File) LineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > len(f.Input) {
		off = len(f.Input)
	}
	i := sort.Search(len(f.lineOffsets), func(i int) bool { return f.lineOffsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	col := 1 + utf8.RuneCountInString(f.Input[f.lineOffsets[i]:off])
	return i + 1, col
}

type Span struct {
	File       *File
	Start, End int // byte offsets [start, end)
}

func (s Span) LocStart() (origin string, line int, col int) {
	if s.File == nil {
		return "", 0, 0
	}
	line, col = s.File.LineCol(s.Start)
	return s.File.Origin, line, col
}

// Text returns the source text covered by s.
func (s Span) Text() string {
	if s.File == nil || s.Start < 0 || s.End > len(s.File.Input) || s.Start > s.End {
		return ""
	}
	return s.File.Input[s.Start:s.End]
}

// Join returns the smallest span covering a and b.
func Join(a, b Span) Span {
	if a.File == nil {
		return b
	}
	if b.File == nil {
		return a
	}
	start, end := a.Start, a.End
	if b.Start < start {
		start = b.Start
	}
	if b.End > end {
		end = b.End
	}
	return Span{File: a.File, Start: start, End: end}
}
