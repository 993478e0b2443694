package gaussian

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	out, err := ParseOutput(filepath.Join("testfiles", "benzene.out"))
	require.NoError(t, err)

	// the last SCF energy wins
	require.NotNil(t, out.TotalEnergy())
	assert.InDelta(t, -232.311130571, *out.TotalEnergy(), 1e-12)
	assert.Len(t, out.SCFEnergies, 2)

	assert.Len(t, out.OccEnergies, 10)
	assert.Len(t, out.VirtEnergies, 10)
	assert.Zero(t, out.SkippedMO)

	homo, lumo, gap := out.FrontierOrbitals()
	require.NotNil(t, homo)
	require.NotNil(t, lumo)
	require.NotNil(t, gap)
	assert.InDelta(t, -0.25614*HartreeToEV, *homo, 1e-9)
	assert.InDelta(t, -0.00475*HartreeToEV, *lumo, 1e-9)
	assert.InDelta(t, *lumo-*homo, *gap, 1e-12)

	require.Len(t, out.States, 3)
	st := out.State(2)
	require.NotNil(t, st)
	assert.Equal(t, "Singlet-B1U", st.Label)
	assert.InDelta(t, 6.1243, st.Energy, 1e-12)
	require.NotNil(t, st.Strength)
	assert.InDelta(t, 0.0517, *st.Strength, 1e-12)

	assert.Nil(t, out.State(4))
}

func TestEigenvaluesCountsRunTogetherFields(t *testing.T) {
	// Gaussian prints wide eigenvalues without a separating space; the
	// fused field is dropped but accounted for
	line := " Alpha  occ. eigenvalues --  -10.18295-10.18293  -0.84015"
	vs, skipped := eigenvalues(line)
	assert.Equal(t, []float64{-0.84015}, vs)
	assert.Equal(t, 1, skipped)
}

func TestParseOutputReportsSkippedEigenvalues(t *testing.T) {
	dir := t.TempDir()
	content := ` Alpha  occ. eigenvalues --  -10.18295-10.18293  -0.84015
 Alpha virt. eigenvalues --    0.00500 100.2-99.9
`
	path := filepath.Join(dir, "fused.out")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := ParseOutput(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{-0.84015}, out.OccEnergies)
	assert.Equal(t, []float64{0.005}, out.VirtEnergies)
	assert.Equal(t, 2, out.SkippedMO)
}

func TestParseOutputMissingFile(t *testing.T) {
	_, err := ParseOutput(filepath.Join("testfiles", "nope.out"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestEmptyOutput(t *testing.T) {
	out := &Output{}
	assert.Nil(t, out.TotalEnergy())
	homo, lumo, gap := out.FrontierOrbitals()
	assert.Nil(t, homo)
	assert.Nil(t, lumo)
	assert.Nil(t, gap)
}

func TestFrontierOrbitalsNoVirtuals(t *testing.T) {
	out := &Output{OccEnergies: []float64{-0.5, -0.3}}
	homo, lumo, gap := out.FrontierOrbitals()
	assert.Nil(t, homo)
	assert.Nil(t, lumo)
	assert.Nil(t, gap)
}
