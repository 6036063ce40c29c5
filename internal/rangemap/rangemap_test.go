package rangemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han-qiu/binsize/internal/rangemap"
)

func TestTryGet_HitsAndMisses(t *testing.T) {
	m := rangemap.New[string]()
	m.Add(0x1000, 0x100, "a")
	m.Add(0x2000, 0x10, "b")

	v, ok := m.TryGet(0x1000)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = m.TryGet(0x10ff)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = m.TryGet(0x1100)
	assert.False(t, ok, "exclusive end of interval should miss")

	_, ok = m.TryGet(0x1fff)
	assert.False(t, ok, "gap between intervals should miss")

	v, ok = m.TryGet(0x2005)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestTryGet_EmptyMap(t *testing.T) {
	m := rangemap.New[int]()
	_, ok := m.TryGet(0)
	assert.False(t, ok)
}

func TestTryGet_BeforeFirstKey(t *testing.T) {
	m := rangemap.New[int]()
	m.Add(0x1000, 0x10, 42)
	_, ok := m.TryGet(0x10)
	assert.False(t, ok)
}

func TestAdd_OverlappingOverwritesStartingAddress(t *testing.T) {
	m := rangemap.New[string]()
	m.Add(0x1000, 0x10, "first")
	m.Add(0x1000, 0x20, "second")

	v, ok := m.TryGet(0x1000)
	require.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestEveryAddressInRangeResolves(t *testing.T) {
	m := rangemap.New[int]()
	m.Add(100, 10, 1)
	for a := uint64(100); a < 110; a++ {
		v, ok := m.TryGet(a)
		require.True(t, ok, "addr %d should resolve", a)
		assert.Equal(t, 1, v)
	}
	_, ok := m.TryGet(110)
	assert.False(t, ok)
}
