package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{"zebra": Int(1), "alpha": Int(2), "beta": Int(3), "Alpha": Int(4)}
	assert.Equal(t, []string{"Alpha", "alpha", "beta", "zebra"}, obj.SortedKeys())
}

func TestCompareKeysUTF16(t *testing.T) {
	assert.Equal(t, 0, compareKeysUTF16("a", "a"))
	assert.Equal(t, -1, compareKeysUTF16("a", "ab"))
	assert.Equal(t, 1, compareKeysUTF16("b", "ab"))
	assert.Equal(t, -1, compareKeysUTF16("\U00010000", ""))
}

func TestOperatorTable(t *testing.T) {
	not, ok := LookupOperator("!")
	assert.True(t, ok)
	assert.Equal(t, 1, not.Arity)
	assert.Equal(t, "not", not.Symbol)

	neg := MustOperator("_")
	assert.Equal(t, "-", neg.Symbol)
	assert.Equal(t, 1, neg.Arity)

	pow := MustOperator("POW")
	assert.Equal(t, OpBuiltin, pow.Kind)
	assert.Equal(t, 2, pow.Arity)

	_, ok = LookupOperator("LIST_COUNT")
	assert.False(t, ok)

	assert.Panics(t, func() { MustOperator("nope") })
}
