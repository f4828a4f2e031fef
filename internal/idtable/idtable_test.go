package idtable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextKeyEmptyTable(t *testing.T) {
	tbl := New[int32, string]()
	key, err := tbl.NextKey(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(0), key)
}

func TestNextKeyFollowsMax(t *testing.T) {
	tbl := New[int32, string]()
	tbl.Set(0, "init")
	key, err := tbl.NextKey(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(1), key)

	tbl.Set(5, "five")
	key, err = tbl.NextKey(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(6), key)
}

func TestNextKeyScansForGap(t *testing.T) {
	tbl := New[int32, string]()
	tbl.Set(0, "a")
	tbl.Set(math.MaxInt32, "wrapped")

	key, err := tbl.NextKey(math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(1), key)
}

func TestNextKeyTableFull(t *testing.T) {
	tbl := New[int32, string]()
	for k := int32(0); k <= 3; k++ {
		tbl.Set(k, "x")
	}

	_, err := tbl.NextKey(3)
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestDeleteThenKeysSorted(t *testing.T) {
	tbl := New[int32, string]()
	tbl.Set(3, "c")
	tbl.Set(1, "a")
	tbl.Set(2, "b")
	tbl.Delete(3)

	assert.Equal(t, []int32{1, 2}, tbl.Keys())
	assert.Equal(t, 2, tbl.Len())
}
