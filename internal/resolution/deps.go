package resolution

import (
	"context"

	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/scope"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

// Scopes is the name-lookup engine.
type Scopes interface {
	// ScopeFor returns the scope a declaration introduces, or nil.
	ScopeFor(id names.ID) *scope.Scope
	Lookup(s *scope.Scope, name string, cfg scope.Config) []scope.Result
}

// PartialResolver resolves just enough of a procedure's signature to know
// the type of its receiver (methods) or first formal (everything else). It
// never looks at the body.
type PartialResolver interface {
	ReceiverOrFirstFormalType(ctx context.Context, fn *uast.Proc) (types.QualifiedType, error)
}

// CanPassResult reports how an actual would be passed to a formal. The
// conversion facts are only meaningful when Passes is set.
type CanPassResult struct {
	Passes                bool
	Converts              bool
	ConvertsWithBorrowing bool
	Promotes              bool
}

// PassOracle decides argument/formal compatibility.
type PassOracle interface {
	CanPass(have, want types.QualifiedType) CanPassResult
}

// ResolvedField is one field of a composite as the field enumerator sees
// it. Type carries the field kind: a type field has the type intent, a param
// field the param intent, everything else a value intent.
type ResolvedField struct {
	Name       string
	Type       types.QualifiedType
	HasDefault bool
	IsGeneric  bool
	Decl       names.ID
}

// ResolvedFields lists the fields of a composite in declaration order.
type ResolvedFields struct {
	Type      *types.CompositeType
	Fields    []ResolvedField
	IsGeneric bool
}

func (rf *ResolvedFields) NumFields() int { return len(rf.Fields) }

// Field returns the field named name, or nil.
func (rf *ResolvedFields) Field(name string) *ResolvedField {
	for i := range rf.Fields {
		if rf.Fields[i].Name == name {
			return &rf.Fields[i]
		}
	}
	return nil
}

// FieldEnumerator computes the fields of a composite type.
type FieldEnumerator interface {
	FieldsOf(ctx context.Context, c *types.CompositeType) (*ResolvedFields, error)
}

// TypeProperties answers per-type questions the builders need.
type TypeProperties interface {
	IsDefaultInitializable(t types.Type) bool
	Genericity(t types.Type) types.Genericity
}

// Deps bundles the collaborators a Resolver consults.
type Deps struct {
	Types   *types.Table
	Scopes  Scopes
	Partial PartialResolver
	Pass    PassOracle
	Fields  FieldEnumerator
	Props   TypeProperties
}
