package resolution

import (
	"context"

	"github.com/stoutes/chapel/internal/scope"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

// shadowLookup searches the type's own scope and its lexical parents, but
// never other modules: an overload must live next to the type to replace the
// generated routine.
const shadowLookup = scope.Decls | scope.Parents | scope.Methods

// isShadowedByUserOverload reports whether the program declares a method or
// operator named name that would accept a t value directly, by instantiation,
// or through a borrowing conversion.
func (r *Resolver) isShadowedByUserOverload(ctx context.Context, t types.Type, name string) (bool, error) {
	comp := types.CompositeOf(t)
	if comp == nil {
		return false, nil
	}
	sc := r.deps.Scopes.ScopeFor(comp.ID())
	if sc == nil {
		return false, nil
	}

	have := types.Q(types.IntentValue, t)
	for _, group := range r.deps.Scopes.Lookup(sc, name, shadowLookup) {
		for _, decl := range group.Decls {
			fn, ok := decl.(*uast.Proc)
			if !ok || !(fn.IsMethod || fn.IsOperator()) {
				continue
			}
			want, err := r.deps.Partial.ReceiverOrFirstFormalType(ctx, fn)
			if err != nil {
				return false, err
			}
			res := r.deps.Pass.CanPass(have, want)
			if res.Passes && (!res.Converts || res.ConvertsWithBorrowing) && !res.Promotes {
				r.log.Debugw("user overload shadows compiler-generated routine",
					"type", t.String(),
					"name", name,
					"overload", string(fn.ID))
				return true, nil
			}
		}
	}
	return false, nil
}
