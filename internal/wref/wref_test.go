package wref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpgradeBeforeClear(t *testing.T) {
	v := 42
	box := NewBox(&v)
	w := box.Weak()

	got, ok := w.Upgrade()
	assert.True(t, ok)
	assert.Equal(t, &v, got)
}

func TestUpgradeAfterClearFails(t *testing.T) {
	v := 42
	box := NewBox(&v)
	w := box.Weak()

	box.Clear()

	_, ok := w.Upgrade()
	assert.False(t, ok)
}

func TestZeroWeakNeverUpgrades(t *testing.T) {
	var w Weak[int]
	assert.True(t, w.IsZero())
	_, ok := w.Upgrade()
	assert.False(t, ok)
}

func TestMultipleWeaksShareInvalidation(t *testing.T) {
	v := 7
	box := NewBox(&v)
	w1 := box.Weak()
	w2 := box.Weak()

	box.Clear()

	_, ok1 := w1.Upgrade()
	_, ok2 := w2.Upgrade()
	assert.False(t, ok1)
	assert.False(t, ok2)
}
