// Package stats holds the statistical plumbing of the classifier
// stage: feature scaling, PCA projection, stratified splitting, and
// classification metrics.
package stats

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Standardize returns a copy of x with every column scaled to zero
// mean and unit variance. Constant columns come out as all zeros.
func Standardize(x *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	ret := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		mean := stat.Mean(col, nil)
		var ss float64
		for _, v := range col {
			dev := v - mean
			ss += dev * dev
		}
		std := math.Sqrt(ss / float64(n))
		for i := 0; i < n; i++ {
			if std == 0 {
				ret.Set(i, j, 0)
			} else {
				ret.Set(i, j, (col[i]-mean)/std)
			}
		}
	}
	return ret
}

// PCA projects x onto its first k principal components. x is assumed
// centered (Standardize does that). k is clamped to the number of
// available components.
func PCA(x *mat.Dense, k int) (*mat.Dense, error) {
	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("principal component decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, c := vecs.Dims()
	if k > c {
		k = c
	}
	r, _ := vecs.Dims()
	sub := vecs.Slice(0, r, 0, k)
	n, _ := x.Dims()
	scores := mat.NewDense(n, k, nil)
	scores.Mul(x, sub)
	return scores, nil
}

// SelectRows copies the given rows of x into a new matrix. An empty
// index set is an error; a stratified split of a very small dataset
// can produce one.
func SelectRows(x mat.Matrix, idx []int) (*mat.Dense, error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("empty row selection")
	}
	_, d := x.Dims()
	ret := mat.NewDense(len(idx), d, nil)
	for i, r := range idx {
		for j := 0; j < d; j++ {
			ret.Set(i, j, x.At(r, j))
		}
	}
	return ret, nil
}

// SelectLabels copies the given entries of y.
func SelectLabels(y []int, idx []int) []int {
	ret := make([]int, len(idx))
	for i, r := range idx {
		ret[i] = y[r]
	}
	return ret
}

// StratifiedSplit partitions sample indices into train and test sets,
// preserving class proportions, deterministically for a fixed seed.
func StratifiedSplit(y []int, testFrac float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))
	for _, group := range classGroups(y) {
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		nTest := int(math.Round(testFrac * float64(len(group))))
		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}
	return train, test
}

// StratifiedFolds deals sample indices into k folds with class
// proportions preserved. The i-th slice is the test set of fold i.
func StratifiedFolds(y []int, k int, seed int64) [][]int {
	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	for _, group := range classGroups(y) {
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		for i, s := range group {
			folds[i%k] = append(folds[i%k], s)
		}
	}
	return folds
}

// classGroups buckets indices by label, in label order.
func classGroups(y []int) [][]int {
	classes := 0
	for _, c := range y {
		if c+1 > classes {
			classes = c + 1
		}
	}
	groups := make([][]int, classes)
	for i, c := range y {
		groups[c] = append(groups[c], i)
	}
	return groups
}

// Accuracy is the fraction of matching predictions.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var hits int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue))
}

// Confusion builds the confusion matrix: rows are true classes,
// columns predicted.
func Confusion(yTrue, yPred []int, classes int) [][]int {
	conf := make([][]int, classes)
	for i := range conf {
		conf[i] = make([]int, classes)
	}
	for i := range yTrue {
		conf[yTrue[i]][yPred[i]]++
	}
	return conf
}

// precisionRecall returns per-class precision, recall, and support
// from a confusion matrix.
func precisionRecall(conf [][]int) (prec, rec []float64, support []int) {
	k := len(conf)
	prec = make([]float64, k)
	rec = make([]float64, k)
	support = make([]int, k)
	for c := 0; c < k; c++ {
		var colSum, rowSum int
		for i := 0; i < k; i++ {
			colSum += conf[i][c]
			rowSum += conf[c][i]
		}
		support[c] = rowSum
		if colSum > 0 {
			prec[c] = float64(conf[c][c]) / float64(colSum)
		}
		if rowSum > 0 {
			rec[c] = float64(conf[c][c]) / float64(rowSum)
		}
	}
	return prec, rec, support
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// MacroF1 averages the per-class F1 scores without support weighting.
func MacroF1(conf [][]int) float64 {
	prec, rec, _ := precisionRecall(conf)
	var sum float64
	for c := range prec {
		sum += f1(prec[c], rec[c])
	}
	return sum / float64(len(prec))
}

// MCC is the multiclass Matthews correlation coefficient computed
// from a confusion matrix.
func MCC(conf [][]int) float64 {
	k := len(conf)
	var trace, total float64
	t := make([]float64, k) // true counts per class
	p := make([]float64, k) // predicted counts per class
	for i := 0; i < k; i++ {
		trace += float64(conf[i][i])
		for j := 0; j < k; j++ {
			v := float64(conf[i][j])
			total += v
			t[i] += v
			p[j] += v
		}
	}
	var tp, tsq, psq float64
	for c := 0; c < k; c++ {
		tp += t[c] * p[c]
		tsq += t[c] * t[c]
		psq += p[c] * p[c]
	}
	denom := math.Sqrt((total*total - psq) * (total*total - tsq))
	if denom == 0 {
		return 0
	}
	return (trace*total - tp) / denom
}

// Report renders a per-class precision/recall/F1 table in the style
// of a classification report.
func Report(conf [][]int, labels []string) string {
	prec, rec, support := precisionRecall(conf)
	var b strings.Builder
	fmt.Fprintf(&b, "%12s%12s%12s%12s%12s\n",
		"", "precision", "recall", "f1-score", "support")
	var total int
	for c, label := range labels {
		fmt.Fprintf(&b, "%12s%12.3f%12.3f%12.3f%12d\n",
			label, prec[c], rec[c], f1(prec[c], rec[c]), support[c])
		total += support[c]
	}
	var correct int
	for c := range conf {
		correct += conf[c][c]
	}
	acc := 0.0
	if total > 0 {
		acc = float64(correct) / float64(total)
	}
	fmt.Fprintf(&b, "%12s%12s%12s%12.3f%12d\n",
		"accuracy", "", "", acc, total)
	return b.String()
}

// Predictor is anything that classifies a matrix of samples.
type Predictor interface {
	PredictAll(x mat.Matrix) []int
}

// PermutationImportance measures the accuracy drop caused by
// shuffling each feature column, repeated with a seeded RNG. It
// returns the mean drop per feature and the raw per-repeat drops.
func PermutationImportance(p Predictor, x *mat.Dense, y []int,
	repeats int, seed int64) (mean []float64, raw [][]float64) {
	n, d := x.Dims()
	rng := rand.New(rand.NewSource(seed))
	base := Accuracy(y, p.PredictAll(x))
	mean = make([]float64, d)
	raw = make([][]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		raw[j] = make([]float64, repeats)
		mat.Col(col, j, x)
		shuffled := mat.DenseCopyOf(x)
		perm := make([]float64, n)
		for r := 0; r < repeats; r++ {
			copy(perm, col)
			rng.Shuffle(n, func(a, b int) {
				perm[a], perm[b] = perm[b], perm[a]
			})
			shuffled.SetCol(j, perm)
			drop := base - Accuracy(y, p.PredictAll(shuffled))
			raw[j][r] = drop
			mean[j] += drop
		}
		mean[j] /= float64(repeats)
	}
	return mean, raw
}
