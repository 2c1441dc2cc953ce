package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffIDs(t *testing.T) {
	toAdd, toRemove := diffIDs([]uint64{1, 2, 3}, []uint64{3, 4, 4, 5})
	assert.Equal(t, []uint64{4, 5}, toAdd)
	assert.Equal(t, []uint64{1, 2}, toRemove)
}

func TestDiffIDsIsIdempotent(t *testing.T) {
	toAdd, toRemove := diffIDs([]uint64{7, 8}, []uint64{8, 7})
	assert.Empty(t, toAdd)
	assert.Empty(t, toRemove)
}

func TestDiffIDsClearsOnEmptyRequest(t *testing.T) {
	toAdd, toRemove := diffIDs([]uint64{1, 2}, []uint64{})
	assert.Empty(t, toAdd)
	assert.Equal(t, []uint64{1, 2}, toRemove)
}

func TestDiffIDsKeepsCurrentOrderForRemovals(t *testing.T) {
	for i := 0; i < 20; i++ {
		_, toRemove := diffIDs([]uint64{9, 3, 7, 3, 1, 5}, []uint64{5})
		assert.Equal(t, []uint64{9, 3, 7, 1}, toRemove)
	}
}

func TestMissingIDs(t *testing.T) {
	assert.Equal(t, []uint64{9}, missingIDs([]uint64{1, 9, 2}, []uint64{2, 1}))
	assert.Empty(t, missingIDs([]uint64{1}, []uint64{1}))
}
