package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStandardize(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 10,
		3, 10,
		4, 10,
	})
	s := Standardize(x)
	n, _ := s.Dims()
	var mean, ss float64
	for i := 0; i < n; i++ {
		mean += s.At(i, 0)
	}
	mean /= float64(n)
	assert.InDelta(t, 0, mean, 1e-12)
	for i := 0; i < n; i++ {
		ss += s.At(i, 0) * s.At(i, 0)
	}
	assert.InDelta(t, 1, math.Sqrt(ss/float64(n)), 1e-12)
	// constant column comes out all zeros
	for i := 0; i < n; i++ {
		assert.Equal(t, 0.0, s.At(i, 1))
	}
}

func TestPCAShape(t *testing.T) {
	x := mat.NewDense(6, 4, []float64{
		1, 2, 0.5, 1,
		2, 4, 0.4, 0,
		3, 6, 0.3, 1,
		4, 8, 0.2, 0,
		5, 10, 0.1, 1,
		6, 12, 0.0, 0,
	})
	scores, err := PCA(Standardize(x), 2)
	require.NoError(t, err)
	r, c := scores.Dims()
	assert.Equal(t, 6, r)
	assert.Equal(t, 2, c)

	// requesting more components than exist clamps
	scores, err = PCA(Standardize(x), 54)
	require.NoError(t, err)
	_, c = scores.Dims()
	assert.LessOrEqual(t, c, 4)
}

func TestSelectRows(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	got, err := SelectRows(x, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.At(0, 0))
	assert.Equal(t, 2.0, got.At(1, 1))

	// an empty fold must surface as an error, not a panic
	_, err = SelectRows(x, nil)
	assert.Error(t, err)
}

func TestStratifiedSplit(t *testing.T) {
	y := make([]int, 30)
	for i := 20; i < 30; i++ {
		y[i] = 1
	}
	train, test := StratifiedSplit(y, 0.4, 42)
	assert.Len(t, train, 18)
	assert.Len(t, test, 12)

	count := func(idx []int, class int) (n int) {
		for _, i := range idx {
			if y[i] == class {
				n++
			}
		}
		return n
	}
	// proportions survive the split
	assert.Equal(t, 8, count(test, 0))
	assert.Equal(t, 4, count(test, 1))

	// deterministic for a fixed seed
	train2, test2 := StratifiedSplit(y, 0.4, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}

func TestStratifiedFolds(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	folds := StratifiedFolds(y, 3, 7)
	require.Len(t, folds, 3)
	seen := make(map[int]bool)
	for _, fold := range folds {
		assert.Len(t, fold, 4)
		var ones int
		for _, i := range fold {
			assert.False(t, seen[i])
			seen[i] = true
			if y[i] == 1 {
				ones++
			}
		}
		assert.Equal(t, 2, ones)
	}
	assert.Len(t, seen, len(y))
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.75, Accuracy([]int{0, 1, 2, 0}, []int{0, 1, 2, 1}))
	assert.Equal(t, 0.0, Accuracy(nil, nil))
}

func TestConfusionScenario(t *testing.T) {
	// labels: BETX=0, PAHs=1, Others=2
	yTrue := []int{0, 1, 1}
	yPred := []int{1, 1, 1}
	conf := Confusion(yTrue, yPred, 3)
	// one BETX molecule misclassified as PAHs
	assert.Equal(t, 1, conf[0][1])
	assert.Equal(t, 2, conf[1][1])
	assert.Equal(t, 0, conf[0][0])
}

func TestMacroF1(t *testing.T) {
	// perfect predictions give macro F1 of 1
	conf := Confusion([]int{0, 1, 2}, []int{0, 1, 2}, 3)
	assert.InDelta(t, 1.0, MacroF1(conf), 1e-12)

	// binary case checked by hand: P0=1, R0=0.5 -> F1_0=2/3;
	// P1=0.5, R1=1 -> F1_1=2/3
	conf = Confusion([]int{0, 0, 1}, []int{0, 1, 1}, 2)
	assert.InDelta(t, 2.0/3.0, MacroF1(conf), 1e-12)
}

func TestMCC(t *testing.T) {
	conf := Confusion([]int{0, 1, 0, 1}, []int{0, 1, 0, 1}, 2)
	assert.InDelta(t, 1.0, MCC(conf), 1e-12)

	conf = Confusion([]int{0, 1, 0, 1}, []int{1, 0, 1, 0}, 2)
	assert.InDelta(t, -1.0, MCC(conf), 1e-12)

	// all-one-class predictions have zero denominator
	conf = Confusion([]int{0, 1}, []int{0, 0}, 2)
	assert.Equal(t, 0.0, MCC(conf))
}

func TestReport(t *testing.T) {
	conf := Confusion([]int{0, 1, 1}, []int{1, 1, 1}, 3)
	got := Report(conf, []string{"BETX", "PAHs", "Others"})
	assert.Contains(t, got, "BETX")
	assert.Contains(t, got, "precision")
	assert.Contains(t, got, "accuracy")
}

// constPredictor ignores one feature entirely, so permuting it can
// never change the accuracy.
type firstFeaturePredictor struct{}

func (firstFeaturePredictor) PredictAll(x mat.Matrix) []int {
	n, _ := x.Dims()
	ret := make([]int, n)
	for i := 0; i < n; i++ {
		if x.At(i, 0) > 0 {
			ret[i] = 1
		}
	}
	return ret
}

func TestPermutationImportance(t *testing.T) {
	x := mat.NewDense(8, 2, []float64{
		-1, 5, -2, 5, -3, 5, -4, 5,
		1, 5, 2, 5, 3, 5, 4, 5,
	})
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	mean, raw := PermutationImportance(firstFeaturePredictor{}, x, y, 10, 42)
	require.Len(t, mean, 2)
	require.Len(t, raw[0], 10)
	// the decisive feature hurts when shuffled, the ignored one never does
	assert.Greater(t, mean[0], 0.0)
	assert.Equal(t, 0.0, mean[1])
}
