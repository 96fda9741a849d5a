package uast

import (
	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/source"
	"github.com/stoutes/chapel/internal/types"
)

type Program struct {
	Modules []*Module

	byID map[names.ID]Node
}

// Node is any declaration with an ID.
type Node interface {
	declNode()
	DeclID() names.ID
	DeclName() string
}

// TypeDecl is a Composite or an Enum.
type TypeDecl interface {
	Node
	typeDecl()
}

type Module struct {
	ID    names.ID
	Name  string
	Uses  []string
	Types []TypeDecl
	Procs []*Proc
	File  *source.File
}

func (*Module) declNode()          {}
func (m *Module) DeclID() names.ID { return m.ID }
func (m *Module) DeclName() string { return m.Name }

type CompositeKind int

const (
	Record CompositeKind = iota
	Class
	Union
)

func (k CompositeKind) String() string {
	switch k {
	case Class:
		return "class"
	case Union:
		return "union"
	default:
		return "record"
	}
}

// Composite is a record, class or union declaration. Methods holds the
// primary methods declared in its body.
type Composite struct {
	ID      names.ID
	Name    string
	Kind    CompositeKind
	Parent  TypeExpr // classes only; nil inherits from the root class
	Fields  []*Field
	Methods []*Proc
}

func (*Composite) declNode()          {}
func (*Composite) typeDecl()          {}
func (c *Composite) DeclID() names.ID { return c.ID }
func (c *Composite) DeclName() string { return c.Name }

func (c *Composite) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type Enum struct {
	ID        names.ID
	Name      string
	Abstract  bool
	Constants []string
}

func (*Enum) declNode()          {}
func (*Enum) typeDecl()          {}
func (e *Enum) DeclID() names.ID { return e.ID }
func (e *Enum) DeclName() string { return e.Name }

type FieldKind int

const (
	FieldVar FieldKind = iota
	FieldConst
	FieldType
	FieldParam
)

func (k FieldKind) String() string {
	switch k {
	case FieldConst:
		return "const"
	case FieldType:
		return "type"
	case FieldParam:
		return "param"
	default:
		return "var"
	}
}

// Intent is the formal intent an initializer uses for a field of this kind.
func (k FieldKind) Intent() types.Intent {
	switch k {
	case FieldType:
		return types.IntentType
	case FieldParam:
		return types.IntentParam
	default:
		return types.IntentIn
	}
}

// Field is a composite field. Type is nil when the field is declared without
// a type expression.
type Field struct {
	ID         names.ID
	Name       string
	Kind       FieldKind
	Type       TypeExpr
	HasDefault bool
}

func (*Field) declNode()          {}
func (f *Field) DeclID() names.ID { return f.ID }
func (f *Field) DeclName() string { return f.Name }

type ProcKind int

const (
	ProcPlain ProcKind = iota
	ProcOperator
)

// Proc is a procedure or operator. A method has a receiver: primary methods
// get the enclosing composite as their receiver, secondary methods name it.
type Proc struct {
	ID         names.ID
	Name       string
	Kind       ProcKind
	IsMethod   bool
	Receiver   TypeExpr
	ThisIntent types.Intent
	Formals    []*Formal
}

func (*Proc) declNode()          {}
func (p *Proc) DeclID() names.ID { return p.ID }
func (p *Proc) DeclName() string { return p.Name }

func (p *Proc) IsOperator() bool { return p.Kind == ProcOperator }

// Formal is a declared parameter. Type is nil for an untyped formal.
type Formal struct {
	Name       string
	Intent     types.Intent
	Type       TypeExpr
	HasDefault bool
}

// Index records every declaration by ID. The loader calls it once the
// program is complete; later edits need another call.
func (p *Program) Index() {
	p.byID = map[names.ID]Node{}
	for _, m := range p.Modules {
		p.byID[m.ID] = m
		for _, td := range m.Types {
			p.byID[td.DeclID()] = td
			if c, ok := td.(*Composite); ok {
				for _, f := range c.Fields {
					p.byID[f.ID] = f
				}
				for _, fn := range c.Methods {
					p.byID[fn.ID] = fn
				}
			}
		}
		for _, fn := range m.Procs {
			p.byID[fn.ID] = fn
		}
	}
}

// Lookup returns the declaration with the given ID.
func (p *Program) Lookup(id names.ID) Node {
	if p.byID == nil {
		p.Index()
	}
	return p.byID[id]
}

func (p *Program) Module(name string) *Module {
	for _, m := range p.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}
