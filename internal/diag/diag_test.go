package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/source"
)

func TestPrintSortsByOrigin(t *testing.T) {
	b := &Bag{}
	b.Addf("M.S", "unknown parent class %q", "Base")
	f := source.NewFile("M.R.x", "Strng")
	b.AddAt(source.Span{File: f, Start: 0, End: 5}, "unknown type 'Strng'")

	var out bytes.Buffer
	Print(&out, b)
	assert.Equal(t,
		"M.R.x:1:1: error: unknown type 'Strng'\n"+
			"M.S: error: unknown parent class \"Base\"\n",
		out.String())
}

func TestErr(t *testing.T) {
	var empty *Bag
	assert.True(t, empty.Empty())
	assert.NoError(t, empty.Err())

	b := &Bag{}
	b.Add("M.R", 0, 0, "duplicate field x")
	other := &Bag{}
	other.Add("M.E", 0, 0, "enum has no constants")
	b.Merge(other)
	b.Merge(nil)

	err := b.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Equal(t, []string{"M.E: enum has no constants\nM.R: duplicate field x"}, errors.GetAllDetails(err))
}
