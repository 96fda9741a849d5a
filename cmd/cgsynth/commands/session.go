package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/frontend"
	"github.com/stoutes/chapel/internal/loader"
	"github.com/stoutes/chapel/internal/logger"
	"github.com/stoutes/chapel/internal/query"
	"github.com/stoutes/chapel/internal/resolution"
	"github.com/stoutes/chapel/internal/types"
)

// session is one loaded program with its resolver.
type session struct {
	path string
	qc   *query.Context
	fe   *frontend.Frontend
	res  *resolution.Resolver
}

func openSession(path string) (*session, error) {
	prog, diags, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	if err := diags.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot load %s", path)
	}
	qc := query.NewContext()
	fe, diags := frontend.New(qc, prog)
	if err := diags.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %s", path)
	}
	logger.Logger.Infow("program loaded",
		"path", path,
		"modules", len(prog.Modules),
		"types", len(fe.DeclaredTypes()))
	return &session{path: path, qc: qc, fe: fe, res: resolution.NewResolver(qc, fe.Deps())}, nil
}

// resolveType resolves text in the scope of the first module that knows it.
func (s *session) resolveType(text string) (types.Type, error) {
	var firstErr error
	for _, mod := range s.fe.Program().Modules {
		t, err := s.fe.ResolveType(mod.Name, text)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return nil, errors.Newf("program %s declares no modules", s.path)
	}
	return nil, firstErr
}

func (s *session) resolveQualified(text string) (types.QualifiedType, error) {
	var firstErr error
	for _, mod := range s.fe.Program().Modules {
		qt, err := s.fe.ResolveQualified(mod.Name, text)
		if err == nil {
			if qt.Intent == types.IntentDefault {
				qt.Intent = types.IntentValue
			}
			return qt, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return types.QualifiedType{}, errors.Newf("program %s declares no modules", s.path)
	}
	return types.QualifiedType{}, firstErr
}

func (s *session) method(ctx context.Context, typ, name string, parenless bool) (*resolution.TypedFnSignature, error) {
	t, err := s.resolveType(typ)
	if err != nil {
		return nil, err
	}
	return s.res.GetCompilerGeneratedMethod(ctx, t, name, parenless)
}

func (s *session) binop(ctx context.Context, lhs, rhs, op string) (*resolution.TypedFnSignature, error) {
	l, err := s.resolveQualified(lhs)
	if err != nil {
		return nil, err
	}
	r, err := s.resolveQualified(rhs)
	if err != nil {
		return nil, err
	}
	return s.res.GetCompilerGeneratedBinaryOp(ctx, l, r, op)
}

func (s *session) field(ctx context.Context, typ, field string) (*resolution.TypedFnSignature, error) {
	t, err := s.resolveType(typ)
	if err != nil {
		return nil, err
	}
	comp := types.CompositeOf(t)
	if comp == nil {
		return nil, errors.WithHint(
			errors.Newf("%s has no fields", t),
			"field accessors exist for records, classes and unions")
	}
	return s.res.FieldAccessor(ctx, comp, field)
}

// printSignature writes a query result: the signature and its flags, or a
// note that nothing is generated.
func printSignature(w io.Writer, sig *resolution.TypedFnSignature) {
	if sig == nil {
		fmt.Fprintln(w, "no compiler-generated routine")
		return
	}
	fmt.Fprintln(w, sig.String())
	fmt.Fprintf(w, "  id: %d  declared at: %s  needs instantiation: %v\n",
		uint32(sig.ID()), sig.Untyped().ID, sig.NeedsInstantiation())
}
