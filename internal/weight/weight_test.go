package weight_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/demangle"
	"github.com/han-qiu/binsize/internal/program"
	"github.com/han-qiu/binsize/internal/weight"
)

func newProg() *program.Program {
	return program.New(demangle.Identity{}, program.TraceConfig{})
}

func TestCompute_MissingEntryPoint(t *testing.T) {
	p := newProg()
	p.AddObject("a", 0x1000, 10, false)

	_, err := weight.Compute(p)
	assert.True(t, errors.Is(err, binerr.ErrMissingEntryPoint))
}

func TestCompute_LinearChain(t *testing.T) {
	// A(100) -> B(200) -> C(300); weight rolls all the way up the chain.
	p := newProg()
	a := p.AddObject("A", 0x1000, 100, false)
	b := p.AddObject("B", 0x2000, 200, false)
	c := p.AddObject("C", 0x3000, 300, false)
	p.AddRef(a, b)
	p.AddRef(b, c)
	p.SetEntryPoint(a)

	_, err := weight.Compute(p)
	require.NoError(t, err)

	assert.Equal(t, uint64(600), a.Weight)
	assert.Equal(t, uint64(500), b.Weight)
	assert.Equal(t, uint64(300), c.Weight)
}

func TestCompute_Diamond(t *testing.T) {
	// A(10) -> B(20), C(30); B,C -> D(40). idom(D) = A, not B or C,
	// so D's weight rolls up past both branches directly into A.
	p := newProg()
	a := p.AddObject("A", 0x1000, 10, false)
	b := p.AddObject("B", 0x2000, 20, false)
	c := p.AddObject("C", 0x3000, 30, false)
	d := p.AddObject("D", 0x4000, 40, false)
	p.AddRef(a, b)
	p.AddRef(a, c)
	p.AddRef(b, d)
	p.AddRef(c, d)
	p.SetEntryPoint(a)

	_, err := weight.Compute(p)
	require.NoError(t, err)

	assert.Equal(t, uint64(100), a.Weight)
	assert.Equal(t, uint64(20), b.Weight)
	assert.Equal(t, uint64(30), c.Weight)
	assert.Equal(t, uint64(40), d.Weight)

	assert.Equal(t, uint64(100), a.MaxWeight)
	assert.Equal(t, uint64(40), b.MaxWeight)
	assert.Equal(t, uint64(40), c.MaxWeight)
	assert.Equal(t, uint64(40), d.MaxWeight)
}

func TestCompute_UnreachableObjectKeepsOwnSize(t *testing.T) {
	p := newProg()
	a := p.AddObject("A", 0x1000, 10, false)
	b := p.AddObject("B", 0x2000, 20, false)
	p.SetEntryPoint(a)

	_, err := weight.Compute(p)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), a.Weight)
	assert.Equal(t, uint64(20), b.Weight)
}

func TestCompute_WeightConservation(t *testing.T) {
	// Sum of weight over roots of the dominator forest (here just entry)
	// equals total size of everything reachable.
	p := newProg()
	a := p.AddObject("A", 0x1000, 5, false)
	b := p.AddObject("B", 0x2000, 7, false)
	c := p.AddObject("C", 0x3000, 11, false)
	p.AddRef(a, b)
	p.AddRef(a, c)
	p.AddRef(b, c)
	p.SetEntryPoint(a)

	_, err := weight.Compute(p)
	require.NoError(t, err)

	assert.Equal(t, uint64(23), a.Weight)
}

func TestCompute_EntryMaxWeightRecordedOnProgram(t *testing.T) {
	p := newProg()
	a := p.AddObject("A", 0x1000, 10, false)
	b := p.AddObject("B", 0x2000, 90, false)
	p.AddRef(a, b)
	p.SetEntryPoint(a)

	res, err := weight.Compute(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.EntryMaxWeight)
	assert.Equal(t, uint64(100), p.MaxWeight())
}

func TestCompute_CycleTerminates(t *testing.T) {
	p := newProg()
	a := p.AddObject("A", 0x1000, 10, false)
	b := p.AddObject("B", 0x2000, 20, false)
	p.AddRef(a, b)
	p.AddRef(b, a)
	p.SetEntryPoint(a)

	_, err := weight.Compute(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), a.Weight)
}
