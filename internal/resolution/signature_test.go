package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/names"
	"github.com/stoutes/chapel/internal/types"
)

func TestSigTableInternsUntyped(t *testing.T) {
	st := NewSigTable()
	formals := []FormalDetail{{Name: "this"}, {Name: "x", HasDefault: true}}
	a := st.Untyped(UntypedFnSignature{ID: "M.R", Name: "init", IsMethod: true, Formals: formals})
	formals[1].HasDefault = false
	b := st.Untyped(UntypedFnSignature{ID: "M.R", Name: "init", IsMethod: true, Formals: []FormalDetail{{Name: "this"}, {Name: "x", HasDefault: true}}})
	assert.Same(t, a, b)
	assert.True(t, a.Formals[1].HasDefault, "interned copy is not aliased to the caller's slice")

	c := st.Untyped(UntypedFnSignature{ID: "M.R", Name: "init", IsMethod: true, Formals: formals})
	assert.NotSame(t, a, c)

	decl := names.ID("M.R.x")
	d := st.Untyped(UntypedFnSignature{ID: "M.R", Name: "init", IsMethod: true, Formals: []FormalDetail{{Name: "this"}, {Name: "x", HasDefault: true, Decl: &decl}}})
	assert.NotSame(t, a, d)
}

func TestSigTableInternsTyped(t *testing.T) {
	tb := types.NewTable()
	st := NewSigTable()
	u := st.Untyped(UntypedFnSignature{ID: types.TupleID, Name: "size", IsMethod: true, Formals: []FormalDetail{{Name: "this"}}})
	tup := tb.Tuple(tb.Int(), tb.Int())

	in := TypedSpec{Untyped: u, FormalTypes: []types.QualifiedType{types.Q(types.IntentConstRef, tup)}}
	a, err := st.Typed(in)
	require.NoError(t, err)
	b, err := st.Typed(in)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.True(t, a.ID().IsValid())
	assert.Equal(t, 1, st.Len())

	got, ok := st.Lookup(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
	_, ok = st.Lookup(0)
	assert.False(t, ok)

	in.NeedsInstantiation = true
	c, err := st.Typed(in)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.NotEqual(t, a.ID(), c.ID())

	in.InstantiatedFrom = c
	in.FormalsInstantiated = Bitmap{}.Set(0)
	d, err := st.Typed(in)
	require.NoError(t, err)
	assert.Same(t, c, d.InstantiatedFrom())
	assert.True(t, d.FormalsInstantiated().Test(0))
}

func TestSigTableFormalCountMismatch(t *testing.T) {
	tb := types.NewTable()
	st := NewSigTable()
	u := st.Untyped(UntypedFnSignature{ID: "M.R", Name: "init", IsMethod: true, Formals: []FormalDetail{{Name: "this"}, {Name: "x"}}})

	_, err := st.Typed(TypedSpec{Untyped: u, FormalTypes: []types.QualifiedType{types.Q(types.IntentRef, tb.Int())}})
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))
	assert.Contains(t, err.Error(), "1 formal types for 2 formals")

	_, err = st.Typed(TypedSpec{})
	assert.True(t, errors.IsAssertionFailure(err))
	assert.Equal(t, 0, st.Len())
}

func TestFormalTypesIsACopy(t *testing.T) {
	tb := types.NewTable()
	st := NewSigTable()
	u := st.Untyped(UntypedFnSignature{ID: types.CPtrID, Name: "eltType", IsMethod: true, Formals: []FormalDetail{{Name: "this"}}})
	sig, err := st.Typed(TypedSpec{Untyped: u, FormalTypes: []types.QualifiedType{types.Q(types.IntentConstRef, tb.CPtr(tb.Int(), false))}})
	require.NoError(t, err)

	fts := sig.FormalTypes()
	fts[0] = types.Q(types.IntentRef, tb.Int())
	assert.Equal(t, types.IntentConstRef, sig.FormalType(0).Intent)
}

func TestBitmap(t *testing.T) {
	var b Bitmap
	assert.True(t, b.Empty())
	assert.False(t, b.Test(3))
	assert.Equal(t, "{}", b.String())

	b2 := b.Set(3).Set(70)
	assert.True(t, b.Empty(), "Set does not modify the receiver")
	assert.True(t, b2.Test(3))
	assert.True(t, b2.Test(70))
	assert.False(t, b2.Test(4))
	assert.False(t, b2.Test(1000))
	assert.False(t, b2.Empty())
	assert.Equal(t, "{3,70}", b2.String())
}

func TestSignatureString(t *testing.T) {
	tb := types.NewTable()
	st := NewSigTable()
	rec := tb.Record("M.R", "R")

	tests := []struct {
		name string
		u    UntypedFnSignature
		fts  []types.QualifiedType
		want string
	}{
		{
			name: "init",
			u: UntypedFnSignature{ID: "M.R", Name: "init", IsMethod: true,
				Formals: []FormalDetail{{Name: "this"}, {Name: "x", HasDefault: true}}},
			fts:  []types.QualifiedType{types.Q(types.IntentRef, rec), types.Q(types.IntentIn, tb.Int())},
			want: "proc R.init(ref this: R, in x: int(64) = ?)",
		},
		{
			name: "domain accessor",
			u: UntypedFnSignature{ID: types.DomainID, Name: "rank", IsMethod: true,
				Formals: []FormalDetail{{Name: "this"}}},
			fts:  []types.QualifiedType{types.Q(types.IntentConstRef, tb.RectDomain(2, false))},
			want: "proc _domain.rank(const ref this: domain(2))",
		},
		{
			name: "operator",
			u: UntypedFnSignature{ID: "M.E", Name: ":", Kind: RoutineOperator,
				Formals: []FormalDetail{{Name: "from"}, {Name: "to"}}},
			fts:  []types.QualifiedType{types.Q(types.IntentDefault, tb.AnyIntegral()), types.Q(types.IntentType, rec)},
			want: "operator :(from: integral, type to: R)",
		},
		{
			name: "unknown type",
			u: UntypedFnSignature{ID: "M.f", Name: "f",
				Formals: []FormalDetail{{Name: "a"}}},
			fts:  []types.QualifiedType{{Intent: types.IntentIn}},
			want: "proc f(in a: ?)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sig, err := st.Typed(TypedSpec{Untyped: st.Untyped(tc.u), FormalTypes: tc.fts})
			require.NoError(t, err)
			assert.Equal(t, tc.want, sig.String())
		})
	}
}

func TestWhereClauseResultString(t *testing.T) {
	assert.Equal(t, "none", WhereNone.String())
	assert.Equal(t, "satisfied", WhereTrue.String())
	assert.Equal(t, "unsatisfied", WhereFalse.String())
}
