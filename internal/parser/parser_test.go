package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoutes/chapel/internal/source"
	"github.com/stoutes/chapel/internal/types"
	"github.com/stoutes/chapel/internal/uast"
)

func TestParseTypeRoundTrip(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"int", "int"},
		{"int(8)", "int(8)"},
		{"Geometry.Point", "Geometry.Point"},
		{"Pair(int, real(32))", "Pair(int, real(32))"},
		{"(int, string)", "(int, string)"},
		{"(int)", "int"},
		{"(int,)", "(int)"},
		{"[domain(2)] real", "[domain(2)] real"},
		{"domain(string, parSafe)", "domain(string, parSafe)"},
		{"c_ptr(int)", "c_ptr(int)"},
		{"c_ptrConst( R )", "c_ptrConst(R)"},
		{"owned C", "owned C"},
		{"borrowed C?", "borrowed C?"},
		{"C?", "C?"},
		{"[domain(1)] (int, owned C?)", "[domain(1)] (int, owned C?)"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			ty, diags := String("test", tc.src)
			require.True(t, diags.Empty(), "unexpected diags: %+v", diags.Items)
			require.NotNil(t, ty)
			assert.Equal(t, tc.want, ty.String())
		})
	}
}

func TestParseTypeShapes(t *testing.T) {
	ty, diags := String("test", "[domain(2, stridable)] owned C?")
	require.True(t, diags.Empty())

	arr, ok := ty.(*uast.ArrayType)
	require.True(t, ok, "got %T", ty)
	dom, ok := arr.Domain.(*uast.DomainType)
	require.True(t, ok, "got %T", arr.Domain)
	require.Len(t, dom.Args, 2)
	assert.Equal(t, 2, dom.Args[0].(*uast.IntLit).Value)
	assert.Equal(t, "stridable", dom.Args[1].String())

	cls, ok := arr.Elem.(*uast.ClassType)
	require.True(t, ok, "got %T", arr.Elem)
	assert.Equal(t, "owned", cls.Decorator)
	assert.True(t, cls.Nilable)
	assert.Equal(t, []string{"C"}, cls.Inner.(*uast.NamedType).Parts)
}

func TestParseQualified(t *testing.T) {
	cases := []struct {
		src    string
		intent types.Intent
		ty     string
	}{
		{"int", types.IntentDefault, "int"},
		{"type int", types.IntentType, "int"},
		{"param int", types.IntentParam, "int"},
		{"ref R", types.IntentRef, "R"},
		{"const ref R(int)", types.IntentConstRef, "R(int)"},
		{"const in owned C", types.IntentConstIn, "owned C"},
		{"in (int, int)", types.IntentIn, "(int, int)"},
		{"const R", types.IntentConstIn, "R"},
		// a lone intent word is a type name
		{"ref", types.IntentDefault, "ref"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			intent, ty, diags := ParseQualified(source.NewFile("test", tc.src))
			require.True(t, diags.Empty(), "unexpected diags: %+v", diags.Items)
			assert.Equal(t, tc.intent, intent)
			assert.Equal(t, tc.ty, ty.String())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{name: "empty", src: "", want: "expected type, found end of input"},
		{name: "trailing", src: "int int", want: "unexpected identifier `int` after type"},
		{name: "unclosed_args", src: "R(int", want: "expected `,` or `)` in argument list"},
		{name: "unclosed_array", src: "[domain(1) int", want: "expected `]` after array domain"},
		{name: "empty_domain", src: "domain()", want: "expected `domain(...)`"},
		{name: "empty_tuple", src: "()", want: "empty tuple type"},
		{name: "bad_char", src: "R$", want: "invalid token `$`"},
		{name: "dot", src: "M.", want: "expected identifier after `.`"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := String("Mod.R.x", tc.src)
			require.False(t, diags.Empty(), "expected diagnostics")
			found := false
			for _, it := range diags.Items {
				if strings.Contains(it.Msg, tc.want) {
					found = true
					assert.Equal(t, "Mod.R.x", it.Origin)
				}
			}
			assert.True(t, found, "expected %q in %+v", tc.want, diags.Items)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, diags := String("M.f", "(int,\n  $)")
	require.False(t, diags.Empty())
	it := diags.Items[0]
	assert.Equal(t, 2, it.Line)
	assert.Equal(t, 3, it.Col)
}
