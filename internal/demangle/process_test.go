package demangle_test

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han-qiu/binsize/internal/demangle"
)

func TestIdentity(t *testing.T) {
	d := demangle.Identity{}
	got, err := d.Demangle("_Zfoo_int")
	require.NoError(t, err)
	assert.Equal(t, "_Zfoo_int", got)
	assert.NoError(t, d.Close())
}

func TestProcess_RoundTripsThroughCat(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available on this system")
	}

	d, err := demangle.NewProcess("cat")
	require.NoError(t, err)
	defer func() { _ = d.Close() }()

	got, err := d.Demangle("_Zfoo_int")
	require.NoError(t, err)
	assert.Equal(t, "_Zfoo_int", got)

	got, err = d.Demangle("_Zfoo_double")
	require.NoError(t, err)
	assert.Equal(t, "_Zfoo_double", got)
}

func TestProcess_CloseIsIdempotent(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available on this system")
	}

	d, err := demangle.NewProcess("cat")
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.NoError(t, d.Close())
}

func TestProcess_DemangleAfterCloseErrors(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available on this system")
	}

	d, err := demangle.NewProcess("cat")
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = d.Demangle("anything")
	assert.Error(t, err)
}
