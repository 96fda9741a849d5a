package frontend

import (
	"strings"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/parser"
	"github.com/stoutes/chapel/internal/scope"
	"github.com/stoutes/chapel/internal/source"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

// ResolveType parses and resolves a type expression as if written in the
// module mod, e.g. `R(int)` or `[domain(1)] real`.
func (f *Frontend) ResolveType(mod, text string) (types.Type, error) {
	te, diags := parser.ParseType(source.NewFile(mod, text))
	if err := diags.Err(); err != nil {
		return nil, errors.Wrapf(err, "invalid type %q", text)
	}
	return f.resolve(mod, te, nil)
}

// ResolveQualified is ResolveType with an optional leading intent, e.g.
// `type int` or `const ref R`.
func (f *Frontend) ResolveQualified(mod, text string) (types.QualifiedType, error) {
	intent, te, diags := parser.ParseQualified(source.NewFile(mod, text))
	if err := diags.Err(); err != nil {
		return types.QualifiedType{}, errors.Wrapf(err, "invalid type %q", text)
	}
	t, err := f.resolve(mod, te, nil)
	if err != nil {
		return types.QualifiedType{}, err
	}
	return types.Q(intent, t), nil
}

// lookupTypeDecl finds a type declaration visible from mod. A two-part name
// is module-qualified; a one-part name is searched in mod and then in the
// modules it uses.
func (f *Frontend) lookupTypeDecl(mod string, parts []string) (uast.TypeDecl, error) {
	switch len(parts) {
	case 1:
		ms := f.tree.ScopeFor(names.Qualify(mod))
		if ms == nil {
			return nil, errors.AssertionFailedf("no scope for module %s", mod)
		}
		for _, group := range f.tree.Lookup(ms, parts[0], scope.Decls|scope.UsesAndImports) {
			for _, d := range group.Decls {
				if td, ok := d.(uast.TypeDecl); ok {
					return td, nil
				}
			}
		}
	case 2:
		if m := f.prog.Module(parts[0]); m != nil {
			for _, td := range m.Types {
				if td.DeclName() == parts[1] {
					return td, nil
				}
			}
		}
	}
	return nil, errors.WithHint(
		errors.Newf("unknown type %s", strings.Join(parts, ".")),
		"types must be declared in the same module, a used module, or named as Module.Type")
}

// resolve turns a type expression into a type. env binds the names of
// type fields when resolving field types inside a composite.
func (f *Frontend) resolve(mod string, te uast.TypeExpr, env map[string]types.Type) (types.Type, error) {
	switch te := te.(type) {
	case *uast.NamedType:
		return f.resolveNamed(mod, te, env)
	case *uast.TupleType:
		elems := make([]types.Type, 0, len(te.Elems))
		for _, e := range te.Elems {
			t, err := f.resolve(mod, e, env)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return f.tb.Tuple(elems...), nil
	case *uast.DomainType:
		return f.resolveDomain(mod, te, env)
	case *uast.ArrayType:
		dt, err := f.resolve(mod, te.Domain, env)
		if err != nil {
			return nil, err
		}
		dom, ok := dt.(*types.DomainType)
		if !ok {
			return nil, errors.Newf("array domain must be a domain type, got %s", dt)
		}
		elt, err := f.resolve(mod, te.Elem, env)
		if err != nil {
			return nil, err
		}
		return f.tb.Array(dom, elt), nil
	case *uast.PtrType:
		elt, err := f.resolve(mod, te.Elem, env)
		if err != nil {
			return nil, err
		}
		return f.tb.CPtr(elt, te.Const), nil
	case *uast.ClassType:
		inner, err := f.resolve(mod, te.Inner, env)
		if err != nil {
			return nil, err
		}
		basic, ok := inner.(*types.CompositeType)
		if !ok || !basic.IsClass() {
			return nil, errors.Newf("%s is not a class type", te.Inner)
		}
		d := types.Decorator{Management: types.Borrowed, Nilable: te.Nilable}
		switch te.Decorator {
		case "owned":
			d.Management = types.Owned
		case "shared":
			d.Management = types.Shared
		case "unmanaged":
			d.Management = types.Unmanaged
		}
		return f.tb.Class(basic, d, nil), nil
	case *uast.IntLit:
		return nil, errors.Newf("integer %d is not a type", te.Value)
	case nil:
		return nil, errors.AssertionFailedf("missing type expression")
	}
	return nil, errors.AssertionFailedf("unhandled type expression %T", te)
}

func (f *Frontend) resolveNamed(mod string, te *uast.NamedType, env map[string]types.Type) (types.Type, error) {
	if len(te.Parts) == 1 {
		name := te.Parts[0]
		if t, ok := env[name]; ok && len(te.Args) == 0 {
			return t, nil
		}
		if types.IsPrimitiveName(name) {
			return f.resolvePrimitive(te)
		}
		if name == "RootClass" && len(te.Args) == 0 {
			return f.tb.Object(), nil
		}
	}
	td, err := f.lookupTypeDecl(mod, te.Parts)
	if err != nil {
		return nil, err
	}
	t := f.declared[td.DeclID()]
	if t == nil {
		return nil, errors.Newf("type %s failed to declare", te)
	}
	if len(te.Args) == 0 {
		return t, nil
	}
	c, ok := t.(*types.CompositeType)
	if !ok {
		return nil, errors.Newf("%s cannot be instantiated", te.Parts[len(te.Parts)-1])
	}
	decl, err := f.composite(c)
	if err != nil {
		return nil, err
	}
	slots := typeSlots(decl)
	if len(te.Args) != len(slots) {
		return nil, errors.WithHintf(
			errors.Newf("%s takes %d type argument(s), got %d", c.Name(), len(slots), len(te.Args)),
			"generic fields of %s: %s", c.Name(), strings.Join(slotNames(slots), ", "))
	}
	subs := make([]types.Type, 0, len(te.Args))
	for _, a := range te.Args {
		st, err := f.resolve(mod, a, env)
		if err != nil {
			return nil, err
		}
		subs = append(subs, st)
	}
	return f.tb.Instantiate(c, subs), nil
}

func (f *Frontend) resolvePrimitive(te *uast.NamedType) (types.Type, error) {
	name := te.Parts[0]
	switch len(te.Args) {
	case 0:
		return f.tb.Primitive(name, 0), nil
	case 1:
		lit, ok := te.Args[0].(*uast.IntLit)
		if !ok || !types.ValidWidth(name, lit.Value) {
			return nil, errors.Newf("invalid width for %s: %s", name, te.Args[0])
		}
		return f.tb.Primitive(name, lit.Value), nil
	}
	return nil, errors.Newf("%s takes at most one width argument", name)
}

func (f *Frontend) resolveDomain(mod string, te *uast.DomainType, env map[string]types.Type) (types.Type, error) {
	if len(te.Args) == 0 || len(te.Args) > 2 {
		return nil, errors.Newf("domain takes one or two arguments, got %d", len(te.Args))
	}
	flag := ""
	if len(te.Args) == 2 {
		nt, ok := te.Args[1].(*uast.NamedType)
		if !ok || len(nt.Parts) != 1 {
			return nil, errors.Newf("invalid domain flag %s", te.Args[1])
		}
		flag = nt.Parts[0]
	}
	if lit, ok := te.Args[0].(*uast.IntLit); ok {
		if lit.Value < 1 {
			return nil, errors.Newf("domain rank must be positive, got %d", lit.Value)
		}
		if flag != "" && flag != "stridable" {
			return nil, errors.Newf("rectangular domains accept only `stridable`, got %s", flag)
		}
		return f.tb.RectDomain(lit.Value, flag == "stridable"), nil
	}
	if flag != "" && flag != "parSafe" {
		return nil, errors.Newf("associative domains accept only `parSafe`, got %s", flag)
	}
	idx, err := f.resolve(mod, te.Args[0], env)
	if err != nil {
		return nil, err
	}
	return f.tb.AssocDomain(idx, flag == "parSafe"), nil
}
