// Package loader turns a program description into a validated declaration
// tree.
package loader

import (
	"github.com/stoutes/chapel/internal/diag"
	"github.com/stoutes/chapel/internal/manifest"
	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/parser"
	"github.com/stoutes/chapel/internal/source"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

// Load reads and validates the description at path. I/O and decoding
// failures are returned as errors; problems with the declarations themselves
// are collected in the bag, and the returned program is still usable for
// everything that was valid.
func Load(path string) (*uast.Program, *diag.Bag, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, err
	}
	prog, diags := Build(m)
	return prog, diags, nil
}

// Build converts a decoded description.
func Build(m *manifest.Manifest) (*uast.Program, *diag.Bag) {
	b := &builder{diags: &diag.Bag{}, modules: map[string]bool{}}
	prog := &uast.Program{}
	for i := range m.Modules {
		if mod := b.module(&m.Modules[i]); mod != nil {
			prog.Modules = append(prog.Modules, mod)
		}
	}
	for _, mod := range prog.Modules {
		for _, u := range mod.Uses {
			if !b.modules[u] {
				b.diags.Addf(string(mod.ID), "unknown module in uses: %s", u)
			}
		}
	}
	prog.Index()
	return prog, b.diags
}

type builder struct {
	diags   *diag.Bag
	modules map[string]bool
}

func (b *builder) module(mm *manifest.Module) *uast.Module {
	if !validIdent(mm.Name) {
		b.diags.Addf("<program>", "invalid module name %q", mm.Name)
		return nil
	}
	if b.modules[mm.Name] {
		b.diags.Addf(mm.Name, "duplicate module %s", mm.Name)
		return nil
	}
	b.modules[mm.Name] = true

	mod := &uast.Module{ID: names.Qualify(mm.Name), Name: mm.Name, Uses: mm.Uses}
	seen := map[string]bool{}
	for i := range mm.Types {
		mt := &mm.Types[i]
		if !validIdent(mt.Name) {
			b.diags.Addf(string(mod.ID), "invalid type name %q", mt.Name)
			continue
		}
		if seen[mt.Name] {
			b.diags.Addf(string(mod.ID), "duplicate type %s", mt.Name)
			continue
		}
		seen[mt.Name] = true
		if td := b.typeDecl(mod.ID, mt); td != nil {
			mod.Types = append(mod.Types, td)
		}
	}
	mod.Procs = b.procs(mod.ID, "", mm.Procs)
	return mod
}

func (b *builder) typeDecl(modID names.ID, mt *manifest.Type) uast.TypeDecl {
	id := modID.Child(mt.Name)
	if mt.Kind == "enum" {
		if len(mt.Fields) > 0 || len(mt.Methods) > 0 || mt.Parent != "" {
			b.diags.Addf(string(id), "enum %s cannot declare fields, methods or a parent", mt.Name)
		}
		if len(mt.Constants) == 0 {
			b.diags.Addf(string(id), "enum %s has no constants", mt.Name)
		}
		consts := map[string]bool{}
		for _, c := range mt.Constants {
			if !validIdent(c) || consts[c] {
				b.diags.Addf(string(id), "invalid or duplicate enum constant %q", c)
			}
			consts[c] = true
		}
		return &uast.Enum{ID: id, Name: mt.Name, Abstract: mt.Abstract, Constants: mt.Constants}
	}

	var kind uast.CompositeKind
	switch mt.Kind {
	case "", "record":
		kind = uast.Record
	case "class":
		kind = uast.Class
	case "union":
		kind = uast.Union
	default:
		b.diags.Addf(string(id), "unknown type kind %q", mt.Kind)
		return nil
	}
	if len(mt.Constants) > 0 || mt.Abstract {
		b.diags.Addf(string(id), "only enums can declare constants or be abstract")
	}

	c := &uast.Composite{ID: id, Name: mt.Name, Kind: kind}
	if mt.Parent != "" {
		if kind != uast.Class {
			b.diags.Addf(string(id), "only classes can inherit")
		} else {
			c.Parent = b.typeExpr(string(id)+".parent", mt.Parent)
		}
	}
	fields := map[string]bool{}
	for _, mf := range mt.Fields {
		if !validIdent(mf.Name) || fields[mf.Name] {
			b.diags.Addf(string(id), "invalid or duplicate field name %q", mf.Name)
			continue
		}
		fields[mf.Name] = true
		f := &uast.Field{ID: id.Child(mf.Name), Name: mf.Name, HasDefault: mf.Default}
		switch mf.Kind {
		case "", "var":
			f.Kind = uast.FieldVar
		case "const":
			f.Kind = uast.FieldConst
		case "type":
			f.Kind = uast.FieldType
		case "param":
			f.Kind = uast.FieldParam
		default:
			b.diags.Addf(string(f.ID), "unknown field kind %q", mf.Kind)
			continue
		}
		if mf.Type != "" {
			f.Type = b.typeExpr(string(f.ID), mf.Type)
		}
		c.Fields = append(c.Fields, f)
	}
	c.Methods = b.procs(id, mt.Name, mt.Methods)
	return c
}

// procs converts procedure declarations owned by owner. When receiver is set
// they are primary methods of that type.
func (b *builder) procs(owner names.ID, receiver string, mps []manifest.Proc) []*uast.Proc {
	var out []*uast.Proc
	count := map[string]int{}
	for _, mp := range mps {
		if mp.Name == "" {
			b.diags.Addf(string(owner), "procedure without a name")
			continue
		}
		id := owner.Overload(mp.Name, count[mp.Name])
		count[mp.Name]++

		fn := &uast.Proc{ID: id, Name: mp.Name, ThisIntent: types.IntentDefault}
		if mp.Operator {
			fn.Kind = uast.ProcOperator
		}
		switch {
		case receiver != "":
			if mp.Receiver != "" {
				b.diags.Addf(string(id), "primary method cannot name a receiver")
			}
			fn.IsMethod = true
			fn.Receiver = &uast.NamedType{Parts: []string{receiver}}
		case mp.Receiver != "":
			fn.IsMethod = true
			fn.Receiver = b.typeExpr(string(id)+".this", mp.Receiver)
		}
		if mp.This != "" {
			in, ok := types.ParseIntent(mp.This)
			if !ok || !fn.IsMethod {
				b.diags.Addf(string(id), "invalid receiver intent %q", mp.This)
			} else {
				fn.ThisIntent = in
			}
		}
		for _, mf := range mp.Formals {
			in, ok := types.ParseIntent(mf.Intent)
			if !ok {
				b.diags.Addf(string(id), "invalid intent %q for formal %s", mf.Intent, mf.Name)
				in = types.IntentDefault
			}
			f := &uast.Formal{Name: mf.Name, Intent: in, HasDefault: mf.Default}
			if mf.Type != "" {
				f.Type = b.typeExpr(string(id)+"."+mf.Name, mf.Type)
			}
			fn.Formals = append(fn.Formals, f)
		}
		out = append(out, fn)
	}
	return out
}

func (b *builder) typeExpr(origin, text string) uast.TypeExpr {
	ty, diags := parser.ParseType(source.NewFile(origin, text))
	b.diags.Merge(diags)
	if !diags.Empty() {
		return nil
	}
	return ty
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
