package report_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han-qiu/binsize/internal/binerr"
	"github.com/han-qiu/binsize/internal/demangle"
	"github.com/han-qiu/binsize/internal/program"
	"github.com/han-qiu/binsize/internal/reach"
	"github.com/han-qiu/binsize/internal/report"
	"github.com/han-qiu/binsize/internal/weight"
)

func newProg() *program.Program {
	return program.New(demangle.Identity{}, program.TraceConfig{})
}

func TestPrintSymbolsByTransitiveWeight_MissingEntryPoint(t *testing.T) {
	p := newProg()
	p.AddObject("a", 0x1000, 10, false)

	var buf bytes.Buffer
	err := report.PrintSymbolsByTransitiveWeight(&buf, p)
	assert.True(t, errors.Is(err, binerr.ErrMissingEntryPoint))
}

func TestPrintSymbolsByTransitiveWeight_SortedDescending(t *testing.T) {
	p := newProg()
	a := p.AddObject("A", 0x1000, 100, false)
	b := p.AddObject("B", 0x2000, 200, false)
	c := p.AddObject("C", 0x3000, 300, false)
	p.AddRef(a, b)
	p.AddRef(b, c)
	p.SetEntryPoint(a)

	_, err := weight.Compute(p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.PrintSymbolsByTransitiveWeight(&buf, p))

	out := buf.String()
	// Match whole symbol cells at line end: the header "SYMBOL" and the
	// humanized size unit ("600 B") also contain the letter B.
	posA := strings.Index(out, " A\n")
	posB := strings.Index(out, " B\n")
	posC := strings.Index(out, " C\n")
	assert.True(t, posA < posB && posB < posC, "expected A before B before C, got:\n%s", out)
}

func TestPrintSymbols_CumulativePercentReachesTotal(t *testing.T) {
	p := newProg()
	p.AddObject("A", 0x1000, 25, false)
	p.AddObject("B", 0x2000, 75, false)

	var buf bytes.Buffer
	require.NoError(t, report.PrintSymbols(&buf, p))
	assert.Contains(t, buf.String(), "100.0%")
}

func TestPrintFiles_SortedBySourceLineWeight(t *testing.T) {
	p := newProg()
	f1 := p.GetFile("a.cc")
	f1.SourceLineWeight = 10
	f2 := p.GetFile("b.cc")
	f2.SourceLineWeight = 90

	var buf bytes.Buffer
	require.NoError(t, report.PrintFiles(&buf, p))

	out := buf.String()
	assert.True(t, strings.Index(out, "b.cc") < strings.Index(out, "a.cc"))
}

func TestPrintGarbage(t *testing.T) {
	p := newProg()
	a := p.AddObject("A", 0x1000, 10, false)
	p.AddObject("B", 0x2000, 10, false)
	p.SetEntryPoint(a)

	rep, err := reach.Run(p, &bytes.Buffer{})
	require.NoError(t, err)

	var buf bytes.Buffer
	report.PrintGarbage(&buf, rep)
	assert.Contains(t, buf.String(), "garbage: 1")
}

func TestWriteDotGraph_MissingEntryPoint(t *testing.T) {
	p := newProg()
	p.AddObject("a", 0x1000, 10, false)

	var buf bytes.Buffer
	err := report.WriteDotGraph(&buf, p, 0)
	assert.True(t, errors.Is(err, binerr.ErrMissingEntryPoint))
}

func TestWriteDotGraph_PrunesLightEdges(t *testing.T) {
	p := newProg()
	a := p.AddObject("A", 0x1000, 10, false)
	b := p.AddObject("B", 0x2000, 20, false)
	c := p.AddObject("C", 0x3000, 100000, false)
	p.AddRef(a, b)
	p.AddRef(a, c)
	p.SetEntryPoint(a)

	_, err := weight.Compute(p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteDotGraph(&buf, p, 30000))

	out := buf.String()
	assert.Contains(t, out, "digraph binsize")
	// Match node labels: the humanized size unit ("10 B") also contains B.
	assert.NotContains(t, out, "label=\""+b.PrettyName+"\\n")
	assert.Contains(t, out, "label=\""+c.PrettyName+"\\n")
}
