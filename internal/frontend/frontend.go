// Package frontend is the resolution front end for a loaded program: it
// owns the type table, resolves type expressions and supplies every
// collaborator the resolution package consults.
package frontend

import (
	"context"

	"go.uber.org/zap"

	"github.com/stoutes/chapel/internal/diag"
	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/query"
	"github.com/stoutes/chapel/internal/resolution"
	"github.com/stoutes/chapel/internal/scope"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

type Frontend struct {
	prog *uast.Program
	tree *scope.Tree
	tb   *types.Table
	log  *zap.SugaredLogger

	// declared maps each type declaration to its (generic) type. It is
	// filled by New and read-only afterwards.
	declared map[names.ID]types.Type

	partial *query.Memo[names.ID, types.QualifiedType]
	fields  *query.Memo[*types.CompositeType, *resolution.ResolvedFields]
}

// New declares every type of prog and checks every type expression in it.
// Problems are reported in the bag; the front end stays usable for the
// declarations that resolved.
func New(qc *query.Context, prog *uast.Program) (*Frontend, *diag.Bag) {
	f := &Frontend{
		prog:     prog,
		tree:     scope.Build(prog),
		tb:       types.NewTable(),
		log:      qc.Logger().Named("frontend"),
		declared: map[names.ID]types.Type{},
		partial:  query.NewMemo[names.ID, types.QualifiedType](qc, "receiverOrFirstFormalType"),
		fields:   query.NewMemo[*types.CompositeType, *resolution.ResolvedFields](qc, "fieldsForTypeDecl"),
	}
	diags := &diag.Bag{}
	f.declareTypes(diags)
	f.checkTypeExprs(diags)
	f.log.Debugw("front end ready",
		"modules", len(prog.Modules),
		"types", len(f.declared),
		"problems", len(diags.Items))
	return f, diags
}

func (f *Frontend) Program() *uast.Program { return f.prog }
func (f *Frontend) Types() *types.Table    { return f.tb }
func (f *Frontend) Scopes() *scope.Tree    { return f.tree }

// Deps wires the front end into a resolution.Resolver.
func (f *Frontend) Deps() resolution.Deps {
	return resolution.Deps{
		Types:   f.tb,
		Scopes:  f.tree,
		Partial: f,
		Pass:    f,
		Fields:  f,
		Props:   f,
	}
}

// DeclaredType returns the type introduced by the declaration id, or nil.
func (f *Frontend) DeclaredType(id names.ID) types.Type {
	return f.declared[id]
}

// DeclaredTypes lists every declared type in declaration order.
func (f *Frontend) DeclaredTypes() []types.Type {
	var out []types.Type
	for _, mod := range f.prog.Modules {
		for _, td := range mod.Types {
			if t := f.declared[td.DeclID()]; t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func (f *Frontend) declareTypes(diags *diag.Bag) {
	classes := map[names.ID]*uast.Composite{}
	for _, mod := range f.prog.Modules {
		for _, td := range mod.Types {
			switch d := td.(type) {
			case *uast.Enum:
				f.declared[d.ID] = f.tb.Enum(d.ID, d.Name, d.Abstract, d.Constants)
			case *uast.Composite:
				switch d.Kind {
				case uast.Record:
					f.declared[d.ID] = f.tb.Record(d.ID, d.Name)
				case uast.Union:
					f.declared[d.ID] = f.tb.Union(d.ID, d.Name)
				case uast.Class:
					classes[d.ID] = d
				}
			}
		}
	}
	visiting := map[names.ID]bool{}
	var declare func(d *uast.Composite) *types.CompositeType
	declare = func(d *uast.Composite) *types.CompositeType {
		if t, ok := f.declared[d.ID].(*types.CompositeType); ok {
			return t
		}
		var parent *types.CompositeType
		if d.Parent != nil {
			if visiting[d.ID] {
				diags.AddAt(d.Parent.Span(), "class "+d.Name+" inherits from itself")
			} else {
				visiting[d.ID] = true
				pd, err := f.parentDecl(d, classes)
				if err != nil {
					diags.Addf(string(d.ID), "%v", err)
				} else {
					parent = declare(pd)
				}
				delete(visiting, d.ID)
			}
		}
		c := f.tb.BasicClass(d.ID, d.Name, parent)
		f.declared[d.ID] = c
		return c
	}
	for _, mod := range f.prog.Modules {
		for _, td := range mod.Types {
			if d, ok := classes[td.DeclID()]; ok {
				declare(d)
			}
		}
	}
}

func (f *Frontend) parentDecl(d *uast.Composite, classes map[names.ID]*uast.Composite) (*uast.Composite, error) {
	nt, ok := d.Parent.(*uast.NamedType)
	if !ok || len(nt.Args) > 0 {
		return nil, errors.Newf("parent of class %s must name a class, got %s", d.Name, d.Parent)
	}
	td, err := f.lookupTypeDecl(d.ID.Module(), nt.Parts)
	if err != nil {
		return nil, err
	}
	pd, ok := classes[td.DeclID()]
	if !ok {
		return nil, errors.Newf("parent of class %s is not a class: %s", d.Name, d.Parent)
	}
	return pd, nil
}

// checkTypeExprs resolves every field, receiver and formal type once so that
// later queries only see well-formed declarations.
func (f *Frontend) checkTypeExprs(diags *diag.Bag) {
	for _, mod := range f.prog.Modules {
		for _, td := range mod.Types {
			c, ok := td.(*uast.Composite)
			if !ok {
				continue
			}
			env := f.genericEnv(c, nil)
			for _, fd := range c.Fields {
				if fd.Type == nil {
					continue
				}
				if _, err := f.resolve(mod.Name, fd.Type, env); err != nil {
					diags.Addf(string(fd.ID), "%v", err)
				}
			}
			f.checkProcs(mod.Name, c.Methods, diags)
		}
		f.checkProcs(mod.Name, mod.Procs, diags)
	}
}

func (f *Frontend) checkProcs(mod string, procs []*uast.Proc, diags *diag.Bag) {
	for _, fn := range procs {
		if fn.Receiver != nil {
			if _, err := f.resolve(mod, fn.Receiver, nil); err != nil {
				diags.Addf(string(fn.ID), "receiver: %v", err)
			}
		}
		for _, formal := range fn.Formals {
			if formal.Type == nil {
				continue
			}
			if _, err := f.resolve(mod, formal.Type, nil); err != nil {
				diags.Addf(string(fn.ID), "formal %s: %v", formal.Name, err)
			}
		}
	}
}

// composite returns the declaration behind a composite type, or nil for the
// root class.
func (f *Frontend) composite(c *types.CompositeType) (*uast.Composite, error) {
	if c.IsObject() {
		return nil, nil
	}
	d, ok := f.prog.Lookup(c.ID()).(*uast.Composite)
	if !ok {
		return nil, errors.AssertionFailedf("no declaration for composite type %s (%s)", c, c.ID())
	}
	return d, nil
}

// ReceiverOrFirstFormalType implements resolution.PartialResolver.
func (f *Frontend) ReceiverOrFirstFormalType(ctx context.Context, fn *uast.Proc) (types.QualifiedType, error) {
	return f.partial.Get(ctx, fn.ID, func(ctx context.Context) (types.QualifiedType, error) {
		mod := fn.ID.Module()
		if fn.IsMethod {
			if fn.Receiver == nil {
				return types.QualifiedType{}, errors.AssertionFailedf("method %s has no receiver", fn.ID)
			}
			t, err := f.resolve(mod, fn.Receiver, nil)
			if err != nil {
				return types.QualifiedType{}, errors.Wrapf(err, "receiver of %s", fn.ID)
			}
			return f.receiverQualified(t, fn.ThisIntent), nil
		}
		if len(fn.Formals) == 0 {
			return types.QualifiedType{Intent: types.IntentUnknown}, nil
		}
		formal := fn.Formals[0]
		if formal.Type == nil {
			return types.Q(formal.Intent, f.tb.Any()), nil
		}
		t, err := f.resolve(mod, formal.Type, nil)
		if err != nil {
			return types.QualifiedType{}, errors.Wrapf(err, "formal %s of %s", formal.Name, fn.ID)
		}
		return types.Q(formal.Intent, t), nil
	})
}

// receiverQualified applies the default receiver conventions: classes are
// passed as `const in borrowed C`, everything else by `const ref`.
func (f *Frontend) receiverQualified(t types.Type, intent types.Intent) types.QualifiedType {
	if c, ok := t.(*types.CompositeType); ok && c.IsClass() {
		t = f.tb.Class(c, types.BorrowedNonNil, nil)
		if intent == types.IntentDefault {
			intent = types.IntentConstIn
		}
	}
	if intent == types.IntentDefault {
		if _, ok := t.(*types.ClassType); ok {
			intent = types.IntentConstIn
		} else {
			intent = types.IntentConstRef
		}
	}
	return types.Q(intent, t)
}
