package types

import (
	"strconv"

	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/query"
)

// Table interns every type of one program. It is safe for concurrent use.
type Table struct {
	in *query.Interner[Type]

	anyType     *AnyType
	anyIntegral *AnyType
	object      *CompositeType
}

func NewTable() *Table {
	tb := &Table{in: query.NewInterner[Type]()}
	tb.anyType = tb.intern(&AnyType{name: "any"}).(*AnyType)
	tb.anyIntegral = tb.intern(&AnyType{name: "integral"}).(*AnyType)
	tb.object = tb.intern(&CompositeType{ckind: CompositeClass, id: ObjectID, name: "RootClass"}).(*CompositeType)
	return tb
}

func (tb *Table) intern(t Type) Type {
	return tb.in.Intern(t.key(), func(query.Handle) Type { return t })
}

// Len reports how many distinct types have been interned.
func (tb *Table) Len() int { return tb.in.Len() }

func (tb *Table) Any() *AnyType         { return tb.anyType }
func (tb *Table) AnyIntegral() *AnyType { return tb.anyIntegral }

// Object is the root of every class hierarchy.
func (tb *Table) Object() *CompositeType { return tb.object }

// Primitive returns the named primitive type. Integral and real types
// default to width 64.
func (tb *Table) Primitive(name string, width int) *Primitive {
	switch name {
	case "int", "uint", "real":
		if width == 0 {
			width = 64
		}
	default:
		width = 0
	}
	return tb.intern(&Primitive{name: name, width: width}).(*Primitive)
}

func (tb *Table) Int() *Primitive { return tb.Primitive("int", 64) }

// IsPrimitiveName reports whether name spells a primitive type.
func IsPrimitiveName(name string) bool {
	switch name {
	case "int", "uint", "real", "bool", "string", "bytes", "nothing":
		return true
	}
	return false
}

// ValidWidth reports whether width is allowed for the primitive name.
func ValidWidth(name string, width int) bool {
	switch name {
	case "int", "uint":
		return width == 8 || width == 16 || width == 32 || width == 64
	case "real":
		return width == 32 || width == 64
	}
	return false
}

func (tb *Table) composite(k CompositeKind, id names.ID, name string, parent *CompositeType) *CompositeType {
	if k == CompositeClass && parent == nil && id != ObjectID {
		parent = tb.object
	}
	return tb.intern(&CompositeType{ckind: k, id: id, name: name, parent: parent}).(*CompositeType)
}

// Record returns the record type declared at id.
func (tb *Table) Record(id names.ID, name string) *CompositeType {
	return tb.composite(CompositeRecord, id, name, nil)
}

// Union returns the union type declared at id.
func (tb *Table) Union(id names.ID, name string) *CompositeType {
	return tb.composite(CompositeUnion, id, name, nil)
}

// BasicClass returns the undecorated class declared at id. A nil parent
// means the class inherits directly from the root object. The parent is
// fixed by the first call for an id.
func (tb *Table) BasicClass(id names.ID, name string, parent *CompositeType) *CompositeType {
	return tb.composite(CompositeClass, id, name, parent)
}

// Instantiate returns generic with its generic fields bound to subs.
func (tb *Table) Instantiate(generic *CompositeType, subs []Type) *CompositeType {
	if len(subs) == 0 {
		return generic
	}
	generic = generic.GenericOrSelf()
	c := &CompositeType{
		ckind:  generic.ckind,
		id:     generic.id,
		name:   generic.name,
		from:   generic,
		subs:   append([]Type(nil), subs...),
		parent: generic.parent,
	}
	return tb.intern(c).(*CompositeType)
}

// Class returns basic decorated with d and an optional manager record.
func (tb *Table) Class(basic *CompositeType, d Decorator, manager Type) *ClassType {
	return tb.intern(&ClassType{basic: basic, decorator: d, manager: manager}).(*ClassType)
}

func (tb *Table) Tuple(elems ...Type) *TupleType {
	return tb.intern(&TupleType{elems: append([]Type(nil), elems...)}).(*TupleType)
}

// RectDomain returns a rectangular domain of the given rank over int.
func (tb *Table) RectDomain(rank int, stridable bool) *DomainType {
	return tb.intern(&DomainType{rank: rank, idx: tb.Int(), stridable: stridable}).(*DomainType)
}

// AssocDomain returns an associative domain over idx.
func (tb *Table) AssocDomain(idx Type, parSafe bool) *DomainType {
	return tb.intern(&DomainType{rank: 1, idx: idx, associative: true, parSafe: parSafe}).(*DomainType)
}

func (tb *Table) Array(dom *DomainType, elt Type) *ArrayType {
	return tb.intern(&ArrayType{dom: dom, elt: elt}).(*ArrayType)
}

func (tb *Table) CPtr(elt Type, isConst bool) *CPtrType {
	return tb.intern(&CPtrType{elt: elt, isConst: isConst}).(*CPtrType)
}

// Enum returns the enum declared at id.
func (tb *Table) Enum(id names.ID, name string, abstract bool, constants []string) *EnumType {
	return tb.intern(&EnumType{id: id, name: name, abstract: abstract, constants: append([]string(nil), constants...)}).(*EnumType)
}

// Describe renders t with its kind, for logs.
func Describe(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Kind().String() + " " + t.String() + " [" + strconv.Quote(string(t.ID())) + "]"
}
