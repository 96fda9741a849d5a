package resolution

import (
	"strconv"
	"strings"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/query"
	"github.com/stoutes/chapel/internal/types"
)

// FormalDetail describes one formal of an untyped signature. Decl is nil for
// formals the compiler made up.
type FormalDetail struct {
	Name       string
	HasDefault bool
	Decl       *names.ID
}

type RoutineKind int

const (
	RoutineProc RoutineKind = iota
	RoutineOperator
)

func (k RoutineKind) String() string {
	if k == RoutineOperator {
		return "operator"
	}
	return "proc"
}

// UntypedFnSignature is the name and formal shape of a routine. Values are
// interned by a SigTable; compare them by pointer.
type UntypedFnSignature struct {
	handle query.Handle

	ID                  names.ID
	Name                string
	IsMethod            bool
	IsTypeConstructor   bool
	IsCompilerGenerated bool
	Throws              bool
	Kind                RoutineKind
	Formals             []FormalDetail
	// WhereClause is the declaration of the where-clause, if any.
	WhereClause *names.ID
}

func (u *UntypedFnSignature) NumFormals() int { return len(u.Formals) }

func (u *UntypedFnSignature) key() string {
	var b strings.Builder
	b.WriteString(string(u.ID))
	b.WriteString("|")
	b.WriteString(u.Name)
	b.WriteString("|")
	for _, flag := range []bool{u.IsMethod, u.IsTypeConstructor, u.IsCompilerGenerated, u.Throws} {
		if flag {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	b.WriteString("|" + u.Kind.String())
	for _, f := range u.Formals {
		b.WriteString("|" + f.Name)
		if f.HasDefault {
			b.WriteString("=?")
		}
		if f.Decl != nil {
			b.WriteString("@" + string(*f.Decl))
		}
	}
	if u.WhereClause != nil {
		b.WriteString("|where@" + string(*u.WhereClause))
	}
	return b.String()
}

type WhereClauseResult int

const (
	WhereNone WhereClauseResult = iota
	WhereTrue
	WhereFalse
)

func (w WhereClauseResult) String() string {
	switch w {
	case WhereTrue:
		return "satisfied"
	case WhereFalse:
		return "unsatisfied"
	default:
		return "none"
	}
}

// Bitmap records which formals of a signature were instantiated.
type Bitmap struct {
	words []uint64
}

func (b Bitmap) Test(i int) bool {
	w := i / 64
	return w < len(b.words) && b.words[w]&(1<<(uint(i)%64)) != 0
}

// Set returns a copy of b with bit i set.
func (b Bitmap) Set(i int) Bitmap {
	w := i / 64
	words := make([]uint64, max(len(b.words), w+1))
	copy(words, b.words)
	words[w] |= 1 << (uint(i) % 64)
	return Bitmap{words: words}
}

func (b Bitmap) Empty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

func (b Bitmap) String() string {
	var sb strings.Builder
	for i := 0; i < len(b.words)*64; i++ {
		if b.Test(i) {
			if sb.Len() > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(i))
		}
	}
	return "{" + sb.String() + "}"
}

// SigID is the stable handle of an interned typed signature.
type SigID = query.Handle

// TypedFnSignature is an untyped signature with a qualified type for each
// formal. Values are interned by a SigTable and immutable.
type TypedFnSignature struct {
	id                  SigID
	untyped             *UntypedFnSignature
	formalTypes         []types.QualifiedType
	where               WhereClauseResult
	needsInstantiation  bool
	instantiatedFrom    *TypedFnSignature
	parentFn            *TypedFnSignature
	formalsInstantiated Bitmap
}

func (s *TypedFnSignature) ID() SigID                            { return s.id }
func (s *TypedFnSignature) Untyped() *UntypedFnSignature         { return s.untyped }
func (s *TypedFnSignature) Name() string                         { return s.untyped.Name }
func (s *TypedFnSignature) NumFormals() int                      { return len(s.formalTypes) }
func (s *TypedFnSignature) FormalType(i int) types.QualifiedType { return s.formalTypes[i] }
func (s *TypedFnSignature) FormalName(i int) string              { return s.untyped.Formals[i].Name }
func (s *TypedFnSignature) FormalHasDefault(i int) bool          { return s.untyped.Formals[i].HasDefault }
func (s *TypedFnSignature) WhereClause() WhereClauseResult       { return s.where }
func (s *TypedFnSignature) NeedsInstantiation() bool             { return s.needsInstantiation }
func (s *TypedFnSignature) InstantiatedFrom() *TypedFnSignature  { return s.instantiatedFrom }
func (s *TypedFnSignature) ParentFn() *TypedFnSignature          { return s.parentFn }
func (s *TypedFnSignature) FormalsInstantiated() Bitmap          { return s.formalsInstantiated }

// FormalTypes returns a copy of the formal types in order.
func (s *TypedFnSignature) FormalTypes() []types.QualifiedType {
	return append([]types.QualifiedType(nil), s.formalTypes...)
}

// String renders the signature as a declaration, e.g.
// `proc R.init(ref this: R, in x: int(64) = ?)`.
func (s *TypedFnSignature) String() string {
	u := s.untyped
	var b strings.Builder
	b.WriteString(u.Kind.String())
	b.WriteByte(' ')
	if u.IsMethod && len(s.formalTypes) > 0 {
		b.WriteString(receiverLabel(s.formalTypes[0].Type, u.ID))
		b.WriteByte('.')
	}
	b.WriteString(u.Name)
	b.WriteByte('(')
	for i, qt := range s.formalTypes {
		if i > 0 {
			b.WriteString(", ")
		}
		if qt.Intent != types.IntentDefault {
			b.WriteString(qt.Intent.String())
			b.WriteByte(' ')
		}
		b.WriteString(u.Formals[i].Name)
		b.WriteString(": ")
		if qt.Type == nil {
			b.WriteString("?")
		} else {
			b.WriteString(qt.Type.String())
		}
		if u.Formals[i].HasDefault {
			b.WriteString(" = ?")
		}
	}
	b.WriteByte(')')
	return b.String()
}

func receiverLabel(t types.Type, id names.ID) string {
	if c := types.CompositeOf(t); c != nil {
		return c.Name()
	}
	return id.Name()
}

func (s *TypedFnSignature) key() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(s.untyped.handle), 10))
	for _, qt := range s.formalTypes {
		b.WriteString("|" + qt.Key())
	}
	b.WriteString("|" + s.where.String())
	b.WriteString("|" + strconv.FormatBool(s.needsInstantiation))
	if s.instantiatedFrom != nil {
		b.WriteString("|from=" + strconv.FormatUint(uint64(s.instantiatedFrom.id), 10))
	}
	if s.parentFn != nil {
		b.WriteString("|parent=" + strconv.FormatUint(uint64(s.parentFn.id), 10))
	}
	b.WriteString("|" + s.formalsInstantiated.String())
	return b.String()
}

// SigTable interns signatures. Unlike memoized query results it is not
// cleared by a new generation, so rebuilding a signature yields the same
// instance and SigID.
type SigTable struct {
	untyped *query.Interner[*UntypedFnSignature]
	typed   *query.Interner[*TypedFnSignature]
}

func NewSigTable() *SigTable {
	return &SigTable{
		untyped: query.NewInterner[*UntypedFnSignature](),
		typed:   query.NewInterner[*TypedFnSignature](),
	}
}

// Untyped returns the canonical copy of u.
func (st *SigTable) Untyped(u UntypedFnSignature) *UntypedFnSignature {
	u.Formals = append([]FormalDetail(nil), u.Formals...)
	return st.untyped.Intern(u.key(), func(h query.Handle) *UntypedFnSignature {
		u.handle = h
		return &u
	})
}

// TypedSpec lists the parts of a typed signature.
type TypedSpec struct {
	Untyped             *UntypedFnSignature
	FormalTypes         []types.QualifiedType
	Where               WhereClauseResult
	NeedsInstantiation  bool
	InstantiatedFrom    *TypedFnSignature
	ParentFn            *TypedFnSignature
	FormalsInstantiated Bitmap
}

// Typed returns the canonical typed signature for in. A formal type count
// that differs from the untyped formal count is a compiler defect.
func (st *SigTable) Typed(in TypedSpec) (*TypedFnSignature, error) {
	if in.Untyped == nil {
		return nil, errors.AssertionFailedf("typed signature without an untyped signature")
	}
	if len(in.FormalTypes) != len(in.Untyped.Formals) {
		return nil, errors.AssertionFailedf("signature %s has %d formal types for %d formals",
			in.Untyped.Name, len(in.FormalTypes), len(in.Untyped.Formals))
	}
	s := &TypedFnSignature{
		untyped:             in.Untyped,
		formalTypes:         append([]types.QualifiedType(nil), in.FormalTypes...),
		where:               in.Where,
		needsInstantiation:  in.NeedsInstantiation,
		instantiatedFrom:    in.InstantiatedFrom,
		parentFn:            in.ParentFn,
		formalsInstantiated: in.FormalsInstantiated,
	}
	return st.typed.Intern(s.key(), func(h query.Handle) *TypedFnSignature {
		s.id = h
		return s
	}), nil
}

// Lookup resolves a SigID.
func (st *SigTable) Lookup(id SigID) (*TypedFnSignature, bool) {
	return st.typed.Get(id)
}

func (st *SigTable) Len() int { return st.typed.Len() }
