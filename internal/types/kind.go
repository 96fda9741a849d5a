package types

// Kind is the structural variant of a Type. The set is closed: every Type
// implementation reports exactly one of these.
type Kind int

const (
	KindOther Kind = iota
	KindRecord
	KindClass
	KindUnion
	KindTuple
	KindDomain
	KindArray
	KindRawPointer
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindClass:
		return "class"
	case KindUnion:
		return "union"
	case KindTuple:
		return "tuple"
	case KindDomain:
		return "domain"
	case KindArray:
		return "array"
	case KindRawPointer:
		return "c_ptr"
	case KindEnum:
		return "enum"
	default:
		return "other"
	}
}

// Intent is the parameter-passing discipline half of a QualifiedType.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentValue
	IntentRef
	IntentConstRef
	IntentRefMaybeConst
	IntentIn
	IntentConstIn
	IntentType
	IntentParam
	IntentDefault
)

func (i Intent) String() string {
	switch i {
	case IntentValue:
		return "var"
	case IntentRef:
		return "ref"
	case IntentConstRef:
		return "const ref"
	case IntentRefMaybeConst:
		return "ref-maybe-const"
	case IntentIn:
		return "in"
	case IntentConstIn:
		return "const in"
	case IntentType:
		return "type"
	case IntentParam:
		return "param"
	case IntentDefault:
		return "<default>"
	default:
		return "<unknown>"
	}
}

// ParseIntent maps the spelling used in declarations back to an Intent.
// The empty string is the default intent; a bare "const" is read as
// "const in".
func ParseIntent(s string) (Intent, bool) {
	switch s {
	case "", "default":
		return IntentDefault, true
	case "var", "value":
		return IntentValue, true
	case "const":
		return IntentConstIn, true
	case "ref":
		return IntentRef, true
	case "const ref":
		return IntentConstRef, true
	case "in":
		return IntentIn, true
	case "const in":
		return IntentConstIn, true
	case "type":
		return IntentType, true
	case "param":
		return IntentParam, true
	case "ref-maybe-const":
		return IntentRefMaybeConst, true
	}
	return IntentUnknown, false
}

// IsRef reports whether the intent passes by reference.
func (i Intent) IsRef() bool {
	switch i {
	case IntentRef, IntentConstRef, IntentRefMaybeConst:
		return true
	}
	return false
}

// Genericity classifies whether a type still needs instantiation.
type Genericity int

const (
	Concrete Genericity = iota
	GenericWithDefaults
	Generic
)

func (g Genericity) String() string {
	switch g {
	case GenericWithDefaults:
		return "generic-with-defaults"
	case Generic:
		return "generic"
	default:
		return "concrete"
	}
}

// NeedsInstantiation reports whether a signature over a type with this
// genericity must be instantiated before use.
func (g Genericity) NeedsInstantiation() bool {
	return g == Generic || g == GenericWithDefaults
}

// QualifiedType pairs a type with how it is passed. It is comparable and
// usable as a map key because every Type is interned.
type QualifiedType struct {
	Intent Intent
	Type   Type
}

func Q(intent Intent, t Type) QualifiedType { return QualifiedType{Intent: intent, Type: t} }

func (q QualifiedType) IsType() bool  { return q.Intent == IntentType }
func (q QualifiedType) IsParam() bool { return q.Intent == IntentParam }

func (q QualifiedType) String() string {
	if q.Type == nil {
		return q.Intent.String() + " <unknown>"
	}
	return q.Intent.String() + " " + q.Type.String()
}

func (q QualifiedType) key() string {
	if q.Type == nil {
		return q.Intent.String() + ":<nil>"
	}
	return q.Intent.String() + ":" + q.Type.key()
}

// Key returns a structural key for q, stable for the lifetime of the Table
// that created its type.
func (q QualifiedType) Key() string { return q.key() }
