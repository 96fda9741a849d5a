package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/source"
)

// Item is one problem found while loading a program description. Origin is
// the declaration path the problem belongs to (e.g. "Geometry.Point.x");
// Line and Col point into that declaration's text when known.
type Item struct {
	Origin string
	Line   int
	Col    int
	Msg    string
}

func (it Item) String() string {
	if it.Line == 0 {
		return fmt.Sprintf("%s: %s", it.Origin, it.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", it.Origin, it.Line, it.Col, it.Msg)
}

type Bag struct {
	Items []Item
}

func (b *Bag) Add(origin string, line int, col int, msg string) {
	b.Items = append(b.Items, Item{Origin: origin, Line: line, Col: col, Msg: msg})
}

func (b *Bag) Addf(origin string, format string, args ...interface{}) {
	b.Add(origin, 0, 0, fmt.Sprintf(format, args...))
}

func (b *Bag) AddAt(s source.Span, msg string) {
	origin, line, col := s.LocStart()
	b.Add(origin, line, col, msg)
}

// Merge appends all items of other.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.Items = append(b.Items, other.Items...)
}

func (b *Bag) Empty() bool { return b == nil || len(b.Items) == 0 }

// Err folds the bag into a single error, or nil when it is empty.
func (b *Bag) Err() error {
	if b.Empty() {
		return nil
	}
	lines := make([]string, 0, len(b.Items))
	for _, it := range sorted(b.Items) {
		lines = append(lines, it.String())
	}
	return errors.WithDetail(
		errors.Newf("%d problem(s) in program description", len(b.Items)),
		strings.Join(lines, "\n"),
	)
}

func Print(w io.Writer, b *Bag) {
	if b.Empty() {
		return
	}
	for _, it := range sorted(b.Items) {
		fmt.Fprintf(w, "%s: error: %s\n", locOf(it), it.Msg)
	}
}

func locOf(it Item) string {
	if it.Line == 0 {
		return it.Origin
	}
	return fmt.Sprintf("%s:%d:%d", it.Origin, it.Line, it.Col)
}

func sorted(in []Item) []Item {
	items := make([]Item, 0, len(in))
	items = append(items, in...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Origin != items[j].Origin {
			return items[i].Origin < items[j].Origin
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Col < items[j].Col
	})
	return items
}
