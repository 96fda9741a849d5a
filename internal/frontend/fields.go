package frontend

import (
	"context"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/resolution"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

// typeSlots lists the fields an instantiation binds, in order: type fields
// and fields declared without a type.
func typeSlots(d *uast.Composite) []*uast.Field {
	if d == nil {
		return nil
	}
	var out []*uast.Field
	for _, fd := range d.Fields {
		if fd.Kind == uast.FieldType || (fd.Type == nil && fd.Kind != uast.FieldParam) {
			out = append(out, fd)
		}
	}
	return out
}

func slotNames(slots []*uast.Field) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Name)
	}
	return out
}

// genericEnv binds the type fields of d for resolving its field types: to
// subs when instantiated, otherwise to their default type or `any`.
func (f *Frontend) genericEnv(d *uast.Composite, subs []types.Type) map[string]types.Type {
	env := map[string]types.Type{}
	i := 0
	for _, fd := range d.Fields {
		if fd.Kind != uast.FieldType && !(fd.Type == nil && fd.Kind != uast.FieldParam) {
			continue
		}
		switch {
		case i < len(subs):
			env[fd.Name] = subs[i]
		case fd.Kind == uast.FieldType && fd.HasDefault && fd.Type != nil:
			if t, err := f.resolve(d.ID.Module(), fd.Type, nil); err == nil {
				env[fd.Name] = t
			}
		}
		if _, ok := env[fd.Name]; !ok && fd.Kind == uast.FieldType {
			env[fd.Name] = f.tb.Any()
		}
		i++
	}
	return env
}

// FieldsOf implements resolution.FieldEnumerator. The result for a generic
// composite marks every field that still needs a type or param value.
func (f *Frontend) FieldsOf(ctx context.Context, c *types.CompositeType) (*resolution.ResolvedFields, error) {
	return f.fields.Get(ctx, c, func(ctx context.Context) (*resolution.ResolvedFields, error) {
		d, err := f.composite(c)
		if err != nil {
			return nil, err
		}
		rf := &resolution.ResolvedFields{Type: c}
		if d == nil {
			return rf, nil
		}
		subs := c.Subs()
		env := f.genericEnv(d, subs)
		mod := d.ID.Module()
		slot := 0
		for _, fd := range d.Fields {
			field := resolution.ResolvedField{Name: fd.Name, HasDefault: fd.HasDefault, Decl: fd.ID}
			switch {
			case fd.Kind == uast.FieldType:
				bound := slot < len(subs)
				field.Type = types.Q(types.IntentType, env[fd.Name])
				field.IsGeneric = !bound
				slot++
			case fd.Kind == uast.FieldParam:
				t := types.Type(f.tb.Any())
				if fd.Type != nil {
					if t, err = f.resolve(mod, fd.Type, env); err != nil {
						return nil, errors.Wrapf(err, "field %s", fd.ID)
					}
				}
				field.Type = types.Q(types.IntentParam, t)
				field.IsGeneric = !fd.HasDefault
			case fd.Type == nil:
				if slot < len(subs) {
					field.Type = types.Q(types.IntentValue, subs[slot])
				} else {
					field.Type = types.Q(types.IntentValue, f.tb.Any())
					field.IsGeneric = true
				}
				slot++
			default:
				t, err := f.resolve(mod, fd.Type, env)
				if err != nil {
					return nil, errors.Wrapf(err, "field %s", fd.ID)
				}
				field.Type = types.Q(types.IntentValue, t)
				field.IsGeneric = f.Genericity(t) != types.Concrete
			}
			rf.IsGeneric = rf.IsGeneric || field.IsGeneric
			rf.Fields = append(rf.Fields, field)
		}
		return rf, nil
	})
}

// Genericity implements resolution.TypeProperties.
func (f *Frontend) Genericity(t types.Type) types.Genericity {
	switch t := t.(type) {
	case *types.AnyType:
		return types.Generic
	case *types.CompositeType:
		return f.compositeGenericity(t)
	case *types.ClassType:
		return f.compositeGenericity(t.Basic())
	case *types.TupleType:
		return f.maxGenericity(t.Elems()...)
	case *types.ArrayType:
		return f.maxGenericity(t.Domain(), t.EltType())
	case *types.DomainType:
		return f.maxGenericity(t.IdxType())
	case *types.CPtrType:
		return f.maxGenericity(t.EltType())
	}
	return types.Concrete
}

func (f *Frontend) maxGenericity(ts ...types.Type) types.Genericity {
	g := types.Concrete
	for _, t := range ts {
		if eg := f.Genericity(t); eg > g {
			g = eg
		}
	}
	return g
}

func (f *Frontend) compositeGenericity(c *types.CompositeType) types.Genericity {
	d, err := f.composite(c)
	if err != nil || d == nil {
		return types.Concrete
	}
	subs := c.Subs()
	g := f.maxGenericity(subs...)
	slot := 0
	for _, fd := range d.Fields {
		generic := false
		switch {
		case fd.Kind == uast.FieldParam:
			generic = true
		case fd.Kind == uast.FieldType || fd.Type == nil:
			generic = slot >= len(subs)
			slot++
		}
		if !generic {
			continue
		}
		fg := types.Generic
		if fd.HasDefault {
			fg = types.GenericWithDefaults
		}
		if fg > g {
			g = fg
		}
	}
	return g
}

// IsDefaultInitializable implements resolution.TypeProperties.
func (f *Frontend) IsDefaultInitializable(t types.Type) bool {
	return f.defaultInit(t, map[types.Type]bool{})
}

func (f *Frontend) defaultInit(t types.Type, seen map[types.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true
	defer delete(seen, t)

	switch t := t.(type) {
	case *types.Primitive, *types.EnumType, *types.DomainType, *types.CPtrType:
		return true
	case *types.AnyType:
		return false
	case *types.ClassType:
		return t.Decorator().Nilable
	case *types.TupleType:
		for _, e := range t.Elems() {
			if !f.defaultInit(e, seen) {
				return false
			}
		}
		return true
	case *types.ArrayType:
		return f.defaultInit(t.EltType(), seen)
	case *types.CompositeType:
		if t.IsClass() {
			return false
		}
		rf, err := f.FieldsOf(context.Background(), t)
		if err != nil || rf.IsGeneric {
			return false
		}
		for _, fd := range rf.Fields {
			if fd.HasDefault || fd.Type.IsType() || fd.Type.IsParam() {
				continue
			}
			if !f.defaultInit(fd.Type.Type, seen) {
				return false
			}
		}
		return true
	}
	return false
}
