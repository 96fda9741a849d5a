// Package resolution synthesizes the routines the compiler supplies
// implicitly: initializers, copy-initializers, destructors, accessors on
// built-in types, record assignment and comparison, and enum casts.
//
// Every result is memoized per query key in a query.Context and interned in
// a SigTable, so repeated queries return the same *TypedFnSignature. A nil
// signature with a nil error means no compiler-generated routine applies.
// A non-nil error is always fatal: errors.IsUnimplemented reports a known
// gap, errors.IsAssertionFailure a compiler defect.
package resolution

import (
	"context"

	"go.uber.org/zap"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/query"
	"github.com/stoutes/chapel/internal/types"
)

type methodKey struct {
	typ       types.Type
	name      string
	parenless bool
}

type binopKey struct {
	lhs  types.QualifiedType
	rhs  types.QualifiedType
	name string
}

type accessorKey struct {
	comp  *types.CompositeType
	field string
}

type Resolver struct {
	deps Deps
	sigs *SigTable
	log  *zap.SugaredLogger

	methods   *query.Memo[methodKey, *TypedFnSignature]
	binops    *query.Memo[binopKey, *TypedFnSignature]
	accessors *query.Memo[accessorKey, *TypedFnSignature]
}

// NewResolver registers the resolver's queries with qc.
func NewResolver(qc *query.Context, deps Deps) *Resolver {
	return &Resolver{
		deps:      deps,
		sigs:      NewSigTable(),
		log:       qc.Logger().Named("resolution"),
		methods:   query.NewMemo[methodKey, *TypedFnSignature](qc, "getCompilerGeneratedMethod"),
		binops:    query.NewMemo[binopKey, *TypedFnSignature](qc, "getCompilerGeneratedBinaryOp"),
		accessors: query.NewMemo[accessorKey, *TypedFnSignature](qc, "fieldAccessor"),
	}
}

// Signatures exposes the intern table, e.g. to resolve a SigID.
func (r *Resolver) Signatures() *SigTable { return r.sigs }

// GetCompilerGeneratedMethod returns the routine the compiler supplies for
// the method name on t. Parenless selects between the parenless and the
// parenful accessors of a domain.
func (r *Resolver) GetCompilerGeneratedMethod(ctx context.Context, t types.Type, name string, parenless bool) (*TypedFnSignature, error) {
	if t == nil {
		return nil, nil
	}
	return r.methods.Get(ctx, methodKey{typ: t, name: name, parenless: parenless}, func(ctx context.Context) (*TypedFnSignature, error) {
		need, err := r.needsSynthesis(ctx, t, name, parenless)
		if err != nil || !need {
			return nil, err
		}
		f, err := methodFamily(t, name)
		if err != nil {
			return nil, err
		}
		sig, err := r.build(ctx, f, target{typ: t, name: name})
		if err != nil {
			return nil, err
		}
		return r.checked(sig, name, t.String())
	})
}

// GetCompilerGeneratedBinaryOp returns the operator the compiler supplies
// for `lhs name rhs`. Only the enum casts are generated; a cast involving
// an abstract enum has none.
func (r *Resolver) GetCompilerGeneratedBinaryOp(ctx context.Context, lhs, rhs types.QualifiedType, name string) (*TypedFnSignature, error) {
	return r.binops.Get(ctx, binopKey{lhs: lhs, rhs: rhs, name: name}, func(ctx context.Context) (*TypedFnSignature, error) {
		if name != OpCast {
			return nil, nil
		}
		f := familyCastFromEnum
		e, ok := lhs.Type.(*types.EnumType)
		if !ok {
			f = familyCastToEnum
			if e, ok = rhs.Type.(*types.EnumType); !ok {
				return nil, nil
			}
		}
		if e.IsAbstract() {
			return nil, nil
		}
		sig, err := r.build(ctx, f, target{typ: e})
		if err != nil {
			return nil, err
		}
		return r.checked(sig, name, lhs.String()+" : "+rhs.String())
	})
}

// FieldAccessor returns the generated accessor for the field of comp,
// declared at the field itself. A nil composite or an unknown field has
// none.
func (r *Resolver) FieldAccessor(ctx context.Context, comp *types.CompositeType, field string) (*TypedFnSignature, error) {
	if comp == nil {
		return nil, nil
	}
	return r.accessors.Get(ctx, accessorKey{comp: comp, field: field}, func(ctx context.Context) (*TypedFnSignature, error) {
		fields, err := r.deps.Fields.FieldsOf(ctx, comp)
		if err != nil {
			return nil, err
		}
		fd := fields.Field(field)
		if fd == nil {
			return nil, nil
		}
		sig, err := r.build(ctx, familyFieldAccessor, target{typ: comp, name: field, decl: fd.Decl})
		if err != nil {
			return nil, err
		}
		return r.checked(sig, field, comp.String())
	})
}

func (r *Resolver) checked(sig *TypedFnSignature, name, subject string) (*TypedFnSignature, error) {
	if sig != nil && sig.Name() != name {
		return nil, errors.AssertionFailedf("generated %q while asked for %q on %s", sig.Name(), name, subject)
	}
	if sig != nil {
		r.log.Debugw("compiler-generated routine",
			"subject", subject,
			"name", name,
			"signature", sig.String(),
			"sig_id", uint32(sig.ID()))
	}
	return sig, nil
}

// Stats counts the work the resolver has done since it was created.
type Stats struct {
	MethodBuilds   int64
	BinaryOpBuilds int64
	AccessorBuilds int64
	Signatures     int
}

func (r *Resolver) Stats() Stats {
	return Stats{
		MethodBuilds:   r.methods.Builds(),
		BinaryOpBuilds: r.binops.Builds(),
		AccessorBuilds: r.accessors.Builds(),
		Signatures:     r.sigs.Len(),
	}
}
