package uast

import (
	"strconv"
	"strings"

	"github.com/stoutes/chapel/internal/source"
)

// TypeExpr is a syntactic type as written in a declaration.
type TypeExpr interface {
	typeNode()
	Span() source.Span
	String() string
}

// NamedType is a possibly qualified name with optional call-style arguments:
// `int`, `int(8)`, `Geometry.Point`, `Pair(int, real)`.
type NamedType struct {
	Parts []string
	Args  []TypeExpr
	S     source.Span
}

func (*NamedType) typeNode()           {}
func (t *NamedType) Span() source.Span { return t.S }
func (t *NamedType) String() string {
	name := strings.Join(t.Parts, ".")
	if len(t.Args) == 0 {
		return name
	}
	return name + "(" + joinTypes(t.Args) + ")"
}

// IntLit appears only as an argument: the width in `int(8)` or the rank in
// `domain(2)`.
type IntLit struct {
	Value int
	S     source.Span
}

func (*IntLit) typeNode()           {}
func (t *IntLit) Span() source.Span { return t.S }
func (t *IntLit) String() string    { return strconv.Itoa(t.Value) }

type TupleType struct {
	Elems []TypeExpr
	S     source.Span
}

func (*TupleType) typeNode()           {}
func (t *TupleType) Span() source.Span { return t.S }
func (t *TupleType) String() string    { return "(" + joinTypes(t.Elems) + ")" }

// DomainType is `domain(<rank>[, stridable])` for rectangular domains or
// `domain(<idxType>[, parSafe])` for associative ones.
type DomainType struct {
	Args []TypeExpr
	S    source.Span
}

func (*DomainType) typeNode()           {}
func (t *DomainType) Span() source.Span { return t.S }
func (t *DomainType) String() string    { return "domain(" + joinTypes(t.Args) + ")" }

// ArrayType is `[<domain>] <elt>`.
type ArrayType struct {
	Domain TypeExpr
	Elem   TypeExpr
	S      source.Span
}

func (*ArrayType) typeNode()           {}
func (t *ArrayType) Span() source.Span { return t.S }
func (t *ArrayType) String() string    { return "[" + t.Domain.String() + "] " + t.Elem.String() }

// ClassType is a decorated class reference: `owned C`, `borrowed C?`, `C?`.
// Decorator is empty when only nilability is given.
type ClassType struct {
	Decorator string
	Inner     TypeExpr
	Nilable   bool
	S         source.Span
}

func (*ClassType) typeNode()           {}
func (t *ClassType) Span() source.Span { return t.S }
func (t *ClassType) String() string {
	s := t.Inner.String()
	if t.Decorator != "" {
		s = t.Decorator + " " + s
	}
	if t.Nilable {
		s += "?"
	}
	return s
}

// PtrType is `c_ptr(T)` or `c_ptrConst(T)`.
type PtrType struct {
	Const bool
	Elem  TypeExpr
	S     source.Span
}

func (*PtrType) typeNode()           {}
func (t *PtrType) Span() source.Span { return t.S }
func (t *PtrType) String() string {
	if t.Const {
		return "c_ptrConst(" + t.Elem.String() + ")"
	}
	return "c_ptr(" + t.Elem.String() + ")"
}

func joinTypes(ts []TypeExpr) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ", ")
}
