package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stoutes/chapel/internal/resolution"
	"github.com/stoutes/chapel/internal/types"
)

func TestCanPass(t *testing.T) {
	f := newTestFrontend(t)
	q := func(text string) types.QualifiedType {
		qt, err := f.ResolveQualified("Base", text)
		if err != nil {
			t.Fatalf("%s: %v", text, err)
		}
		if qt.Intent == types.IntentDefault {
			qt.Intent = types.IntentValue
		}
		return qt
	}
	var (
		fail   = resolution.CanPassResult{}
		direct = resolution.CanPassResult{Passes: true}
		conv   = resolution.CanPassResult{Passes: true, Converts: true}
		borrow = resolution.CanPassResult{Passes: true, Converts: true, ConvertsWithBorrowing: true}
		promo  = resolution.CanPassResult{Passes: true, Promotes: true}
	)
	tests := []struct {
		have string
		want string
		res  resolution.CanPassResult
	}{
		{"int", "int", direct},
		{"int", "ref int", direct},
		{"int(32)", "int", conv},
		{"int(32)", "ref int", fail},
		{"int", "int(32)", fail},
		{"uint(32)", "int", conv},
		{"uint", "int", fail},
		{"int", "real", conv},
		{"real", "int", fail},
		{"bool", "int", fail},
		{"Plain", "Plain", direct},
		{"Plain", "Holder", fail},
		{"Box(int)", "Box", direct},
		{"Box(int)", "Box(real)", fail},
		{"Box", "Box(int)", fail},
		{"type int", "type int", direct},
		{"type int", "int", fail},
		{"int", "type int", fail},
		{"(int, Box(int))", "(int, Box)", direct},
		{"(int(32), owned Dog)", "(int, borrowed Dog)", conv},
		{"(owned Dog, shared Dog)", "(borrowed Dog, borrowed Dog)", borrow},
		{"(int, int)", "(int, int, int)", fail},
		{"[domain(1)] int", "int", promo},
		{"[domain(1)] int(8)", "int", fail},
		{"domain(string)", "string", promo},
		{"[domain(1)] int", "[domain(1)] int", direct},

		// classes
		{"Dog", "Dog", direct},
		{"owned Dog", "Dog", direct},
		{"owned Dog", "borrowed Dog", borrow},
		{"owned Dog", "const in borrowed Dog", borrow},
		{"owned Dog", "ref borrowed Dog", fail},
		{"shared Dog", "owned Dog", fail},
		{"unmanaged Dog", "borrowed Dog", borrow},
		{"borrowed Dog", "borrowed Dog?", conv},
		{"owned Dog", "borrowed Dog?", conv},
		{"borrowed Dog?", "borrowed Dog", fail},
		{"owned Puppy", "owned Animal", conv},
		{"Puppy", "Dog", conv},
		{"Dog", "Puppy", fail},
		{"Dog", "borrowed RootClass", conv},
		{"Plain", "Dog", fail},
		{"Dog", "Plain", fail},

		// placeholders
		{"Plain", "any", direct},
		{"(int, real)", "any", direct},
	}
	for _, tc := range tests {
		t.Run(tc.have+" -> "+tc.want, func(t *testing.T) {
			want := types.Q(types.IntentValue, f.Types().Any())
			if tc.want != "any" {
				want = q(tc.want)
			}
			assert.Equal(t, tc.res, f.CanPass(q(tc.have), want))
		})
	}
}

func TestCanPassIntegralPlaceholder(t *testing.T) {
	f := newTestFrontend(t)
	integral := types.Q(types.IntentType, f.Types().AnyIntegral())
	assert.True(t, f.CanPass(types.Q(types.IntentType, f.Types().Primitive("uint", 8)), integral).Passes)
	assert.False(t, f.CanPass(types.Q(types.IntentType, f.Types().Primitive("real", 32)), integral).Passes)
}

func TestCanPassNilTypes(t *testing.T) {
	f := newTestFrontend(t)
	assert.False(t, f.CanPass(types.QualifiedType{}, types.Q(types.IntentValue, f.Types().Int())).Passes)
	assert.False(t, f.CanPass(types.Q(types.IntentValue, f.Types().Int()), types.QualifiedType{Intent: types.IntentUnknown}).Passes)
}
