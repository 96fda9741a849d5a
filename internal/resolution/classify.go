package resolution

import (
	"context"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/types"
)

// Names of the lifecycle routines every composite type gets.
const (
	NameInit     = "init"
	NameInitCopy = "init="
	NameDeinit   = "deinit"
)

// Record operators are only generated for records and unions; every other
// type gets them from the standard modules.
const (
	OpAssign = "="
	OpEqual  = "=="
	OpCast   = ":"
)

func isLifecycleName(name string) bool {
	return name == NameInit || name == NameInitCopy || name == NameDeinit
}

func isRecordOperator(name string) bool {
	return name == OpAssign || name == OpEqual
}

var (
	domainParenless = map[string]bool{"idxType": true, "rank": true, "stridable": true, "parSafe": true}
	domainParenful  = map[string]bool{"isRectangular": true, "isAssociative": true}
)

// needsSynthesis decides whether the compiler supplies name for t.
// Lifecycle routines and record operators yield to a compatible user
// overload; the accessors of built-in types never do.
func (r *Resolver) needsSynthesis(ctx context.Context, t types.Type, name string, parenless bool) (bool, error) {
	kind := t.Kind()
	// Built-in and primitive types have their lifecycle routines supplied by
	// the runtime, so only declared composites can receive generated ones.
	composite := kind == types.KindRecord || kind == types.KindUnion || kind == types.KindClass
	if composite && (isLifecycleName(name) || (kind != types.KindClass && isRecordOperator(name))) {
		shadowed, err := r.isShadowedByUserOverload(ctx, t, name)
		if err != nil {
			return false, err
		}
		return !shadowed, nil
	}

	switch kind {
	case types.KindTuple:
		return name == "size", nil
	case types.KindDomain:
		if parenless {
			return domainParenless[name], nil
		}
		return domainParenful[name], nil
	case types.KindArray:
		return name == "domain" || name == "eltType", nil
	case types.KindRawPointer:
		return name == "eltType", nil
	case types.KindRecord, types.KindClass, types.KindUnion, types.KindEnum, types.KindOther:
		return false, nil
	default:
		return false, errors.AssertionFailedf("unhandled type kind %v for %s", kind, t)
	}
}
