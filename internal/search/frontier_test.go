package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontier_AscendingPriority(t *testing.T) {
	f := newFrontier()
	f.push(0, 5)
	f.push(1, 1)
	f.push(2, 3)

	assert.Equal(t, 3, f.len())
	assert.Equal(t, int32(1), f.pop())
	assert.Equal(t, int32(2), f.pop())
	assert.Equal(t, int32(0), f.pop())
	assert.Equal(t, 0, f.len())
}

func TestFrontier_EqualPrioritiesPopInInsertionOrder(t *testing.T) {
	f := newFrontier()
	for i := int32(0); i < 10; i++ {
		f.push(i, 2)
	}
	f.push(99, 1)

	assert.Equal(t, int32(99), f.pop())
	for i := int32(0); i < 10; i++ {
		assert.Equal(t, i, f.pop())
	}
}

func TestFrontier_Reinsertion(t *testing.T) {
	f := newFrontier()
	f.push(0, 1)
	f.push(1, 2)
	idx := f.pop()
	f.push(idx, 3)

	assert.Equal(t, int32(1), f.pop())
	assert.Equal(t, int32(0), f.pop())
}
