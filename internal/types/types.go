package types

import (
	"strconv"
	"strings"

	"github.com/stoutes/chapel/internal/names"
)

// Type is an interned type. Two Types are the same type iff they are the
// same pointer; construct them only through a Table.
type Type interface {
	Kind() Kind
	// ID is the declaration that introduces the type, or "" for primitives.
	ID() names.ID
	String() string
	key() string
}

// Well-known IDs for built-in type declarations.
const (
	TupleID  names.ID = "ChapelTuple._tuple"
	DomainID names.ID = "ChapelDomain._domain"
	ArrayID  names.ID = "ChapelArray._array"
	CPtrID   names.ID = "CTypes.c_ptr"
	ObjectID names.ID = "ChapelBase.RootClass"
)

// Primitive covers int/uint/real/bool/string/bytes/nothing. Width is 0 when
// the type has no width parameter.
type Primitive struct {
	name  string
	width int
}

func (*Primitive) Kind() Kind     { return KindOther }
func (*Primitive) ID() names.ID   { return "" }
func (p *Primitive) Name() string { return p.name }
func (p *Primitive) Width() int   { return p.width }
func (p *Primitive) key() string  { return "prim:" + p.String() }
func (p *Primitive) IsIntegral() bool {
	return p.name == "int" || p.name == "uint"
}
func (p *Primitive) IsNumeric() bool {
	return p.IsIntegral() || p.name == "real"
}
func (p *Primitive) String() string {
	if p.width == 0 {
		return p.name
	}
	return p.name + "(" + strconv.Itoa(p.width) + ")"
}

// AnyType is a generic placeholder: `any` for an untyped formal, or
// `integral` for any int/uint type.
type AnyType struct {
	name string
}

func (*AnyType) Kind() Kind       { return KindOther }
func (*AnyType) ID() names.ID     { return "" }
func (a *AnyType) String() string { return a.name }
func (a *AnyType) key() string    { return "any:" + a.name }

// Accepts reports whether a concrete type fits the placeholder.
func (a *AnyType) Accepts(t Type) bool {
	if a.name == "any" {
		return true
	}
	p, ok := t.(*Primitive)
	return ok && p.IsIntegral()
}

type CompositeKind int

const (
	CompositeRecord CompositeKind = iota
	CompositeClass
	CompositeUnion
)

// CompositeType is a record, union, or basic (undecorated) class. An
// instantiation of a generic composite keeps a link to its generic origin
// and the substitutions for its generic fields, in field order.
type CompositeType struct {
	ckind  CompositeKind
	id     names.ID
	name   string
	from   *CompositeType
	subs   []Type
	parent *CompositeType
}

func (c *CompositeType) Kind() Kind {
	switch c.ckind {
	case CompositeClass:
		return KindClass
	case CompositeUnion:
		return KindUnion
	default:
		return KindRecord
	}
}

func (c *CompositeType) ID() names.ID           { return c.id }
func (c *CompositeType) Name() string           { return c.name }
func (c *CompositeType) IsRecord() bool         { return c.ckind == CompositeRecord }
func (c *CompositeType) IsClass() bool          { return c.ckind == CompositeClass }
func (c *CompositeType) IsUnion() bool          { return c.ckind == CompositeUnion }
func (c *CompositeType) IsObject() bool         { return c.id == ObjectID }
func (c *CompositeType) Subs() []Type           { return c.subs }
func (c *CompositeType) Parent() *CompositeType { return c.parent }

// InstantiatedFrom returns the generic composite this one instantiates, or
// nil when it is not an instantiation.
func (c *CompositeType) InstantiatedFrom() *CompositeType { return c.from }

// GenericOrSelf returns the generic origin of an instantiation, or c.
func (c *CompositeType) GenericOrSelf() *CompositeType {
	if c.from != nil {
		return c.from
	}
	return c
}

func (c *CompositeType) String() string {
	if len(c.subs) == 0 {
		return c.name
	}
	return c.name + "(" + typeList(c.subs) + ")"
}

func (c *CompositeType) key() string {
	k := "comp:" + string(c.id)
	if len(c.subs) > 0 {
		k += "(" + keyList(c.subs) + ")"
	}
	return k
}

// Management is the memory-management part of a class decorator.
type Management int

const (
	Borrowed Management = iota
	Owned
	Shared
	Unmanaged
)

func (m Management) String() string {
	switch m {
	case Owned:
		return "owned"
	case Shared:
		return "shared"
	case Unmanaged:
		return "unmanaged"
	default:
		return "borrowed"
	}
}

// Decorator describes how a class value is managed and whether it can be nil.
type Decorator struct {
	Management Management
	Nilable    bool
}

var BorrowedNonNil = Decorator{Management: Borrowed}

func (d Decorator) String() string {
	s := d.Management.String()
	if d.Nilable {
		s += "?"
	}
	return s
}

// ClassType is a decorated reference to a basic class. Manager is only set
// for managed decorators backed by a record type.
type ClassType struct {
	basic     *CompositeType
	decorator Decorator
	manager   Type
}

func (*ClassType) Kind() Kind              { return KindClass }
func (c *ClassType) ID() names.ID          { return c.basic.id }
func (c *ClassType) Basic() *CompositeType { return c.basic }
func (c *ClassType) Decorator() Decorator  { return c.decorator }
func (c *ClassType) Manager() Type         { return c.manager }
func (c *ClassType) String() string {
	s := c.decorator.Management.String() + " " + c.basic.String()
	if c.decorator.Nilable {
		s += "?"
	}
	return s
}
func (c *ClassType) key() string {
	k := "class:" + c.decorator.String() + ":" + c.basic.key()
	if c.manager != nil {
		k += ":mgr=" + c.manager.key()
	}
	return k
}

type TupleType struct {
	elems []Type
}

func (*TupleType) Kind() Kind       { return KindTuple }
func (*TupleType) ID() names.ID     { return TupleID }
func (t *TupleType) Elems() []Type  { return t.elems }
func (t *TupleType) Size() int      { return len(t.elems) }
func (t *TupleType) String() string { return "(" + typeList(t.elems) + ")" }
func (t *TupleType) key() string    { return "tuple(" + keyList(t.elems) + ")" }

// DomainType is a rectangular domain of some rank over integral indices, or
// an associative domain over an arbitrary index type.
type DomainType struct {
	rank        int
	idx         Type
	stridable   bool
	associative bool
	parSafe     bool
}

func (*DomainType) Kind() Kind            { return KindDomain }
func (*DomainType) ID() names.ID          { return DomainID }
func (d *DomainType) Rank() int           { return d.rank }
func (d *DomainType) IdxType() Type       { return d.idx }
func (d *DomainType) Stridable() bool     { return d.stridable }
func (d *DomainType) ParSafe() bool       { return d.parSafe }
func (d *DomainType) IsAssociative() bool { return d.associative }
func (d *DomainType) IsRectangular() bool { return !d.associative }
func (d *DomainType) String() string {
	var b strings.Builder
	b.WriteString("domain(")
	if d.associative {
		b.WriteString(d.idx.String())
		if d.parSafe {
			b.WriteString(", parSafe")
		}
	} else {
		b.WriteString(strconv.Itoa(d.rank))
		if d.stridable {
			b.WriteString(", stridable")
		}
	}
	b.WriteString(")")
	return b.String()
}
func (d *DomainType) key() string {
	return "dom:" + d.String() + ":" + d.idx.key()
}

type ArrayType struct {
	dom *DomainType
	elt Type
}

func (*ArrayType) Kind() Kind            { return KindArray }
func (*ArrayType) ID() names.ID          { return ArrayID }
func (a *ArrayType) Domain() *DomainType { return a.dom }
func (a *ArrayType) EltType() Type       { return a.elt }
func (a *ArrayType) String() string      { return "[" + a.dom.String() + "] " + a.elt.String() }
func (a *ArrayType) key() string         { return "arr[" + a.dom.key() + "]" + a.elt.key() }

// CPtrType is the raw pointer type `c_ptr(T)` / `c_ptrConst(T)`.
type CPtrType struct {
	elt     Type
	isConst bool
}

func (*CPtrType) Kind() Kind      { return KindRawPointer }
func (*CPtrType) ID() names.ID    { return CPtrID }
func (p *CPtrType) EltType() Type { return p.elt }
func (p *CPtrType) IsConst() bool { return p.isConst }
func (p *CPtrType) String() string {
	if p.isConst {
		return "c_ptrConst(" + p.elt.String() + ")"
	}
	return "c_ptr(" + p.elt.String() + ")"
}
func (p *CPtrType) key() string { return "ptr:" + strconv.FormatBool(p.isConst) + ":" + p.elt.key() }

// EnumType is a declared enum. An abstract enum has constants but no
// underlying integer values.
type EnumType struct {
	id        names.ID
	name      string
	abstract  bool
	constants []string
}

func (*EnumType) Kind() Kind            { return KindEnum }
func (e *EnumType) ID() names.ID        { return e.id }
func (e *EnumType) Name() string        { return e.name }
func (e *EnumType) IsAbstract() bool    { return e.abstract }
func (e *EnumType) Constants() []string { return e.constants }
func (e *EnumType) String() string      { return e.name }
func (e *EnumType) key() string         { return "enum:" + string(e.id) }

// CompositeOf returns the composite declaration behind t: t itself for
// records, unions and basic classes, the basic class for a decorated class,
// nil for everything else.
func CompositeOf(t Type) *CompositeType {
	switch tt := t.(type) {
	case *CompositeType:
		return tt
	case *ClassType:
		return tt.basic
	}
	return nil
}

// Key returns the structural key of t.
func Key(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.key()
}

func typeList(ts []Type) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ", ")
}

func keyList(ts []Type) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, Key(t))
	}
	return strings.Join(parts, ",")
}
