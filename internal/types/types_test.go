package types

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableInternsStructurallyEqualTypes(t *testing.T) {
	tb := NewTable()

	assert.Same(t, tb.Int(), tb.Primitive("int", 0))
	assert.NotSame(t, tb.Primitive("int", 8), tb.Int())
	assert.Same(t, tb.Tuple(tb.Int(), tb.Primitive("real", 64)), tb.Tuple(tb.Int(), tb.Primitive("real", 0)))
	assert.Same(t, tb.RectDomain(2, false), tb.RectDomain(2, false))
	assert.NotSame(t, tb.RectDomain(2, false), tb.RectDomain(2, true))
	assert.Same(t, tb.Array(tb.RectDomain(1, false), tb.Int()), tb.Array(tb.RectDomain(1, false), tb.Int()))
	assert.Same(t, tb.CPtr(tb.Int(), false), tb.CPtr(tb.Int(), false))
	assert.NotSame(t, tb.CPtr(tb.Int(), false), tb.CPtr(tb.Int(), true))

	r := tb.Record("M.R", "R")
	assert.Same(t, r, tb.Record("M.R", "R"))
	assert.Same(t, tb.Instantiate(r, []Type{tb.Int()}), tb.Instantiate(r, []Type{tb.Int()}))
	assert.Same(t, r, tb.Instantiate(r, nil))
}

func TestTableConcurrentIntern(t *testing.T) {
	tb := NewTable()
	const n = 32
	got := make([]*TupleType, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = tb.Tuple(tb.Int(), tb.Primitive("bool", 0))
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestKindsAndStrings(t *testing.T) {
	tb := NewTable()
	c := tb.BasicClass("M.C", "C", nil)
	e := tb.Enum("M.E", "E", false, []string{"a", "b"})

	tests := []struct {
		name string
		typ  Type
		kind Kind
		str  string
	}{
		{"int", tb.Int(), KindOther, "int(64)"},
		{"bool", tb.Primitive("bool", 32), KindOther, "bool"},
		{"record", tb.Record("M.R", "R"), KindRecord, "R"},
		{"union", tb.Union("M.U", "U"), KindUnion, "U"},
		{"basic class", c, KindClass, "C"},
		{"owned class", tb.Class(c, Decorator{Management: Owned, Nilable: true}, nil), KindClass, "owned C?"},
		{"tuple", tb.Tuple(tb.Int(), tb.Primitive("string", 0)), KindTuple, "(int(64), string)"},
		{"rect domain", tb.RectDomain(2, true), KindDomain, "domain(2, stridable)"},
		{"assoc domain", tb.AssocDomain(tb.Primitive("string", 0), true), KindDomain, "domain(string, parSafe)"},
		{"array", tb.Array(tb.RectDomain(1, false), tb.Int()), KindArray, "[domain(1)] int(64)"},
		{"c_ptr", tb.CPtr(tb.Int(), false), KindRawPointer, "c_ptr(int(64))"},
		{"c_ptrConst", tb.CPtr(tb.Int(), true), KindRawPointer, "c_ptrConst(int(64))"},
		{"enum", e, KindEnum, "E"},
		{"any", tb.Any(), KindOther, "any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.typ.Kind())
			assert.Equal(t, tt.str, tt.typ.String())
		})
	}
}

func TestBuiltinIDs(t *testing.T) {
	tb := NewTable()
	assert.Equal(t, TupleID, tb.Tuple(tb.Int()).ID())
	assert.Equal(t, DomainID, tb.RectDomain(1, false).ID())
	assert.Equal(t, ArrayID, tb.Array(tb.RectDomain(1, false), tb.Int()).ID())
	assert.Equal(t, CPtrID, tb.CPtr(tb.Int(), false).ID())
	assert.Equal(t, ObjectID, tb.Object().ID())
}

func TestClassesInheritFromObject(t *testing.T) {
	tb := NewTable()
	p := tb.BasicClass("M.P", "P", nil)
	c := tb.BasicClass("M.C", "C", p)

	assert.Same(t, tb.Object(), p.Parent())
	assert.Same(t, p, c.Parent())
	assert.Nil(t, tb.Object().Parent())
	assert.True(t, tb.Object().IsObject())
	assert.Nil(t, tb.Record("M.R", "R").Parent())
}

func TestCompositeOf(t *testing.T) {
	tb := NewTable()
	c := tb.BasicClass("M.C", "C", nil)
	r := tb.Record("M.R", "R")

	assert.Same(t, r, CompositeOf(r))
	assert.Same(t, c, CompositeOf(c))
	assert.Same(t, c, CompositeOf(tb.Class(c, BorrowedNonNil, nil)))
	assert.Nil(t, CompositeOf(tb.Int()))
	assert.Nil(t, CompositeOf(tb.Tuple()))
}

func TestInstantiation(t *testing.T) {
	tb := NewTable()
	r := tb.Record("M.R", "R")
	ri := tb.Instantiate(r, []Type{tb.Int()})

	assert.Same(t, r, ri.InstantiatedFrom())
	assert.Same(t, r, ri.GenericOrSelf())
	assert.Same(t, r, r.GenericOrSelf())
	assert.Equal(t, "R(int(64))", ri.String())
	assert.Equal(t, r.ID(), ri.ID())

	// instantiating an instantiation starts from the generic origin
	assert.Same(t, ri, tb.Instantiate(ri, []Type{tb.Int()}))
}

func TestAnyAccepts(t *testing.T) {
	tb := NewTable()
	assert.True(t, tb.Any().Accepts(tb.Record("M.R", "R")))
	assert.True(t, tb.AnyIntegral().Accepts(tb.Primitive("uint", 8)))
	assert.False(t, tb.AnyIntegral().Accepts(tb.Primitive("real", 64)))
}

func TestIntents(t *testing.T) {
	for _, s := range []string{"var", "ref", "const ref", "in", "const in", "type", "param", "ref-maybe-const"} {
		in, ok := ParseIntent(s)
		require.True(t, ok, s)
		assert.Equal(t, s, in.String())
	}
	in, ok := ParseIntent("")
	require.True(t, ok)
	assert.Equal(t, IntentDefault, in)
	in, ok = ParseIntent("const")
	require.True(t, ok)
	assert.Equal(t, IntentConstIn, in)
	_, ok = ParseIntent("out")
	assert.False(t, ok)

	assert.True(t, IntentConstRef.IsRef())
	assert.False(t, IntentConstIn.IsRef())
}

func TestQualifiedTypeIsComparable(t *testing.T) {
	tb := NewTable()
	m := map[QualifiedType]int{}
	m[Q(IntentType, tb.Int())] = 1
	assert.Equal(t, 1, m[Q(IntentType, tb.Primitive("int", 64))])
	assert.Equal(t, "type int(64)", Q(IntentType, tb.Int()).String())
	assert.True(t, Q(IntentType, tb.Int()).IsType())
	assert.NotEqual(t, Q(IntentRef, tb.Int()).Key(), Q(IntentConstRef, tb.Int()).Key())
}

func TestGenericity(t *testing.T) {
	assert.False(t, Concrete.NeedsInstantiation())
	assert.True(t, Generic.NeedsInstantiation())
	assert.True(t, GenericWithDefaults.NeedsInstantiation())
}
