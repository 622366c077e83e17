package alloc_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/alloc"
)

func TestMalloc_ReturnsEightByteAlignedDistinctPointers(t *testing.T) {
	alloc.Init()

	a := alloc.Malloc(24)
	b := alloc.Malloc(24)
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.NotEqual(t, a, b)
	assert.Zero(t, uintptr(a)%8)
	assert.Zero(t, uintptr(b)%8)

	alloc.Free(a)
	alloc.Free(b)
}

func TestFree_ReturnsBlockToReuse(t *testing.T) {
	alloc.Init()

	before := alloc.Stats()
	a := alloc.Malloc(64)
	alloc.Free(a)
	b := alloc.Malloc(64)

	assert.Equal(t, a, b, "a freed block should be handed back out by the next same-size request")
	after := alloc.Stats()
	assert.Equal(t, before.ArenaBytes, after.ArenaBytes, "reuse from the free list must not grow the arena")

	alloc.Free(b)
}

func TestMalloc_GrowsArenaPastInitialSize(t *testing.T) {
	alloc.Init()
	initial := alloc.Stats().ArenaBytes

	ptrs := make([]unsafe.Pointer, 0, 4000)
	for i := 0; i < 4000; i++ {
		p := alloc.Malloc(64)
		require.NotNil(t, p)
		ptrs = append(ptrs, p)
	}

	assert.Greater(t, alloc.Stats().ArenaBytes, initial)

	for _, p := range ptrs {
		alloc.Free(p)
	}
}

func TestMalloc_ZeroSizeReturnsNil(t *testing.T) {
	alloc.Init()
	assert.Nil(t, alloc.Malloc(0))
}
