package train

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticDataset writes a small, cleanly separable 3-class CSV in
// the extractor's shape.
func syntheticDataset(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Sample,Class,TotalEnergy,HOMO,LUMO,Gap,E1,Lambda1,F1,Type1\n")
	classes := []string{"BETX", "PAHs", "Others"}
	for i := 0; i < 30; i++ {
		c := i % 3
		base := float64(10 * c)
		fmt.Fprintf(&b, "mol_%02d,%s,%g,%g,%g,%g,%g,%g,%g,Singlet\n",
			i, classes[c],
			-100-base,
			base+0.1*float64(i%5),
			base+1,
			1.0,
			base+4,
			300+base,
			0.1+0.01*float64(c))
	}
	return writeCSV(t, b.String())
}

func TestWeightVector(t *testing.T) {
	w := weightVector([]string{"BETX", "PAHs", "Others"},
		map[string]float64{"BETX": 5, "Others": 2})
	assert.Equal(t, []float64{5, 1, 2}, w)
}

func TestBalancedWeights(t *testing.T) {
	y := []int{0, 0, 0, 0, 1, 1}
	w := balancedWeights(y, 2)
	// n/(k*n_c): 6/(2*4) and 6/(2*2)
	assert.InDelta(t, 0.75, w[0], 1e-12)
	assert.InDelta(t, 1.5, w[1], 1e-12)
}

func TestComplement(t *testing.T) {
	assert.Equal(t, []int{0, 2, 4}, complement([]int{1, 3}, 5))
}

func TestRunTinyDatasetErrors(t *testing.T) {
	// one sample per class leaves the stratified test set empty; the
	// run must fail with an error instead of panicking downstream
	csv := writeCSV(t, "Sample,Class,TotalEnergy,HOMO\n"+
		"mol_00,BETX,-100,0.1\n"+
		"mol_01,PAHs,-110,0.2\n"+
		"mol_02,Others,-120,0.3\n")
	err := Run(Options{
		CSV:          csv,
		LabelColumn:  "Class",
		Labels:       []string{"BETX", "PAHs", "Others"},
		Components:   2,
		Trees:        5,
		MaxDepth:     3,
		Seed:         42,
		TestFraction: 0.4,
		Out:          &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty row selection")
}

func TestRunEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("grid search is slow in short mode")
	}
	var out bytes.Buffer
	err := Run(Options{
		CSV:          syntheticDataset(t),
		LabelColumn:  "Class",
		Labels:       []string{"BETX", "PAHs", "Others"},
		Components:   4,
		Trees:        25,
		MaxDepth:     10,
		ClassWeights: map[string]float64{"BETX": 5, "PAHs": 1, "Others": 2},
		Seed:         42,
		TestFraction: 0.4,
		Out:          &out,
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Accuracy:")
	assert.Contains(t, got, "Macro F1:")
	assert.Contains(t, got, "MCC:")
	assert.Contains(t, got, "Confusion matrix")
	assert.Contains(t, got, "Gini importance")
	assert.Contains(t, got, "permutation importance")
	assert.Contains(t, got, "5-fold cross-validation")
	assert.Contains(t, got, "Best grid configuration")
}
