package resolution

import (
	"context"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/types"
)

// receiverRule says how the `this` formal of a generated method is typed.
type receiverRule int

const (
	// recvNone: no receiver; every formal comes from the formal list.
	recvNone receiverRule = iota
	// recvLifecycle: `ref` for records and unions, `const in borrowed C`
	// (non-nilable, no manager) for classes.
	recvLifecycle
	// recvConstRef: `const ref` at the subject type.
	recvConstRef
	// recvRefMaybeConst: `ref-maybe-const`, classes as borrowed non-nilable.
	recvRefMaybeConst
)

// slot picks the type of a formal.
type slot int

const (
	slotSubject     slot = iota // the type the routine is generated for
	slotReceiver                // the type given to `this`
	slotAnyIntegral             // the integral placeholder
)

type formalSpec struct {
	name   string
	intent types.Intent
	slot   slot
}

// instRule decides the needs-instantiation flag.
type instRule int

const (
	instNever instRule = iota
	instFields
	instGenericity
	instAlways
)

// family describes one kind of compiler-generated routine.
type family struct {
	name       string // "" means the queried name
	kind       RoutineKind
	method     bool
	receiver   receiverRule
	composite  bool // the subject is the composite behind the type
	useGeneric bool // start from the generic origin of an instantiation
	formals    []formalSpec
	perField   bool
	inst       instRule
}

var (
	familyInit = &family{
		name:       NameInit,
		method:     true,
		receiver:   recvLifecycle,
		composite:  true,
		useGeneric: true,
		perField:   true,
		inst:       instFields,
	}
	familyInitCopy = &family{
		name:      NameInitCopy,
		method:    true,
		receiver:  recvLifecycle,
		composite: true,
		formals:   []formalSpec{{"other", types.IntentConstRef, slotReceiver}},
	}
	familyDeinit = &family{
		name:      NameDeinit,
		method:    true,
		receiver:  recvLifecycle,
		composite: true,
	}
	familyAccessor = &family{
		method:   true,
		receiver: recvConstRef,
	}
	familyFieldAccessor = &family{
		method:    true,
		receiver:  recvRefMaybeConst,
		composite: true,
	}
	familyAssign = &family{
		name:       OpAssign,
		kind:       RoutineOperator,
		method:     true,
		composite:  true,
		useGeneric: true,
		formals: []formalSpec{
			{"this", types.IntentConstRef, slotSubject},
			{"lhs", types.IntentConstRef, slotSubject},
			{"rhs", types.IntentConstRef, slotSubject},
		},
		inst: instGenericity,
	}
	familyEqual = &family{
		name:       OpEqual,
		kind:       RoutineOperator,
		method:     true,
		composite:  true,
		useGeneric: true,
		formals: []formalSpec{
			{"this", types.IntentRef, slotSubject},
			{"lhs", types.IntentRef, slotSubject},
			{"rhs", types.IntentConstRef, slotSubject},
		},
		inst: instGenericity,
	}
	familyCastFromEnum = &family{
		name: OpCast,
		kind: RoutineOperator,
		formals: []formalSpec{
			{"from", types.IntentDefault, slotSubject},
			{"to", types.IntentType, slotAnyIntegral},
		},
		inst: instAlways,
	}
	familyCastToEnum = &family{
		name: OpCast,
		kind: RoutineOperator,
		formals: []formalSpec{
			{"from", types.IntentDefault, slotAnyIntegral},
			{"to", types.IntentType, slotSubject},
		},
		inst: instAlways,
	}
)

// methodFamily picks the family for a method query that needs synthesis.
func methodFamily(t types.Type, name string) (*family, error) {
	switch name {
	case NameInit:
		return familyInit, nil
	case NameInitCopy:
		return familyInitCopy, nil
	case NameDeinit:
		return familyDeinit, nil
	}
	switch t.Kind() {
	case types.KindDomain, types.KindArray, types.KindTuple, types.KindRawPointer:
		return familyAccessor, nil
	case types.KindRecord, types.KindUnion:
		switch name {
		case OpEqual:
			return familyEqual, nil
		case OpAssign:
			return familyAssign, nil
		}
		return nil, errors.AssertionFailedf("no compiler-generated %s method %q", t.Kind(), name)
	case types.KindClass, types.KindEnum, types.KindOther:
		return nil, errors.AssertionFailedf("compiler-generated %q requested for %s type %s", name, t.Kind(), t)
	default:
		return nil, errors.AssertionFailedf("unhandled type kind %v for %s", t.Kind(), t)
	}
}

// target is what a family is applied to.
type target struct {
	typ  types.Type // as queried
	name string     // used when the family has no fixed name
	decl names.ID   // overrides the declaration ID, for field accessors
}

// build applies f to tgt.
func (r *Resolver) build(ctx context.Context, f *family, tgt target) (*TypedFnSignature, error) {
	subject := tgt.typ
	var comp *types.CompositeType
	if f.composite {
		comp = types.CompositeOf(tgt.typ)
		if comp == nil {
			return nil, errors.AssertionFailedf("%s needs a composite type, got %s", f.routineName(tgt), tgt.typ)
		}
		if f.useGeneric {
			comp = comp.GenericOrSelf()
		}
		subject = comp
	}

	var formals []FormalDetail
	var formalTypes []types.QualifiedType

	if f.receiver != recvNone {
		recv, err := r.receiverType(f.receiver, subject, comp)
		if err != nil {
			return nil, err
		}
		formals = append(formals, FormalDetail{Name: "this"})
		formalTypes = append(formalTypes, recv)
	}

	for _, fs := range f.formals {
		var t types.Type
		switch fs.slot {
		case slotSubject:
			t = subject
		case slotReceiver:
			if len(formalTypes) == 0 {
				return nil, errors.AssertionFailedf("formal %s refers to a missing receiver", fs.name)
			}
			t = formalTypes[0].Type
		case slotAnyIntegral:
			t = r.deps.Types.AnyIntegral()
		}
		formals = append(formals, FormalDetail{Name: fs.name})
		formalTypes = append(formalTypes, types.Q(fs.intent, t))
	}

	var fields *ResolvedFields
	if f.perField {
		var err error
		fields, err = r.deps.Fields.FieldsOf(ctx, comp)
		if err != nil {
			return nil, err
		}
		if err := checkInitSupported(comp, fields); err != nil {
			return nil, err
		}
		for _, fd := range fields.Fields {
			hasDefault := fd.HasDefault || r.deps.Props.IsDefaultInitializable(fd.Type.Type)
			formals = append(formals, FormalDetail{Name: fd.Name, HasDefault: hasDefault})
			if fd.Type.IsType() || fd.Type.IsParam() {
				formalTypes = append(formalTypes, fd.Type)
			} else {
				formalTypes = append(formalTypes, types.Q(types.IntentIn, fd.Type.Type))
			}
		}
	}

	declID := subject.ID()
	if tgt.decl != "" {
		declID = tgt.decl
	}
	ufs := r.sigs.Untyped(UntypedFnSignature{
		ID:                  declID,
		Name:                f.routineName(tgt),
		IsMethod:            f.method,
		IsCompilerGenerated: true,
		Kind:                f.kind,
		Formals:             formals,
	})

	needs := false
	switch f.inst {
	case instFields:
		needs = fields != nil && fields.IsGeneric
	case instGenericity:
		needs = r.deps.Props.Genericity(tgt.typ).NeedsInstantiation()
	case instAlways:
		needs = true
	}

	return r.sigs.Typed(TypedSpec{
		Untyped:            ufs,
		FormalTypes:        formalTypes,
		Where:              WhereNone,
		NeedsInstantiation: needs,
	})
}

func (f *family) routineName(tgt target) string {
	if f.name != "" {
		return f.name
	}
	return tgt.name
}

func (r *Resolver) receiverType(rule receiverRule, subject types.Type, comp *types.CompositeType) (types.QualifiedType, error) {
	switch rule {
	case recvConstRef:
		return types.Q(types.IntentConstRef, subject), nil
	case recvRefMaybeConst:
		if comp != nil && comp.IsClass() {
			return types.Q(types.IntentRefMaybeConst, r.deps.Types.Class(comp, types.BorrowedNonNil, nil)), nil
		}
		return types.Q(types.IntentRefMaybeConst, subject), nil
	case recvLifecycle:
		switch {
		case comp == nil:
		case comp.IsRecord(), comp.IsUnion():
			return types.Q(types.IntentRef, comp), nil
		case comp.IsClass():
			return types.Q(types.IntentConstIn, r.deps.Types.Class(comp, types.BorrowedNonNil, nil)), nil
		}
		return types.QualifiedType{}, errors.AssertionFailedf("no lifecycle receiver for %s", subject)
	}
	return types.QualifiedType{}, errors.AssertionFailedf("unknown receiver rule %d", rule)
}

// checkInitSupported rejects the initializers the compiler cannot generate.
func checkInitSupported(comp *types.CompositeType, fields *ResolvedFields) error {
	if fields.IsGeneric {
		return errors.WithDetailf(errors.Unimplemented("initializers on generic types"),
			"type %s has generic fields", comp.Name())
	}
	if comp.IsClass() {
		if parent := comp.Parent(); parent != nil && !parent.IsObject() {
			return errors.WithDetailf(errors.Unimplemented("initializers on inheriting classes"),
				"class %s inherits from %s", comp.Name(), parent.Name())
		}
	}
	return nil
}
