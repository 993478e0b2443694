// Package forest implements a random-forest classifier with per-class
// sample weighting, used to classify molecules from their spectral
// descriptors. Trees split on weighted Gini impurity over bootstrap
// resamples; prediction is a majority vote.
package forest

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Config are the ensemble hyperparameters.
type Config struct {
	Trees       int
	MaxDepth    int    // 0 means unbounded
	MinSplit    int    // minimum samples to attempt a split
	MinLeaf     int    // minimum samples in each child
	MaxFeatures string // "sqrt", "log2", or "" for all features
	Seed        int64
}

func (c Config) withDefaults() Config {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.MinSplit < 2 {
		c.MinSplit = 2
	}
	if c.MinLeaf < 1 {
		c.MinLeaf = 1
	}
	return c
}

type node struct {
	feature     int
	threshold   float64
	left, right *node
	class       int
	leaf        bool
}

// Forest is a trained ensemble.
type Forest struct {
	cfg         Config
	classes     int
	features    int
	trees       []*node
	importances []float64
}

// Train fits a forest on x (rows are samples) with class labels y in
// [0, classes). weights are per-class sample weights; nil means
// uniform. Training is deterministic for a fixed Config.Seed.
func Train(x mat.Matrix, y []int, classes int, weights []float64, cfg Config) *Forest {
	cfg = cfg.withDefaults()
	n, d := x.Dims()
	if weights == nil {
		weights = make([]float64, classes)
		for i := range weights {
			weights[i] = 1
		}
	}
	f := &Forest{
		cfg:         cfg,
		classes:     classes,
		features:    d,
		trees:       make([]*node, cfg.Trees),
		importances: make([]float64, d),
	}
	mtry := d
	switch cfg.MaxFeatures {
	case "sqrt":
		mtry = int(math.Sqrt(float64(d)))
	case "log2":
		mtry = int(math.Log2(float64(d)))
	}
	if mtry < 1 {
		mtry = 1
	}
	for t := 0; t < cfg.Trees; t++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))
		samples := make([]int, n)
		for i := range samples {
			samples[i] = rng.Intn(n)
		}
		b := &builder{
			x:        x,
			y:        y,
			weights:  weights,
			cfg:      cfg,
			classes:  classes,
			features: d,
			mtry:     mtry,
			rng:      rng,
			imp:      f.importances,
		}
		b.root = b.weightOf(samples)
		f.trees[t] = b.build(samples, 0)
	}
	// normalize accumulated impurity decreases to sum to 1
	var sum float64
	for _, v := range f.importances {
		sum += v
	}
	if sum > 0 {
		for i := range f.importances {
			f.importances[i] /= sum
		}
	}
	return f
}

// Importances returns the normalized mean decrease in impurity per
// feature.
func (f *Forest) Importances() []float64 {
	ret := make([]float64, len(f.importances))
	copy(ret, f.importances)
	return ret
}

// Predict classifies a single feature vector.
func (f *Forest) Predict(row []float64) int {
	votes := make([]int, f.classes)
	for _, t := range f.trees {
		votes[classify(t, row)]++
	}
	best := 0
	for c := 1; c < f.classes; c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return best
}

// PredictAll classifies every row of x.
func (f *Forest) PredictAll(x mat.Matrix) []int {
	n, d := x.Dims()
	ret := make([]int, n)
	row := make([]float64, d)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			row[j] = x.At(i, j)
		}
		ret[i] = f.Predict(row)
	}
	return ret
}

func classify(t *node, row []float64) int {
	for !t.leaf {
		if row[t.feature] <= t.threshold {
			t = t.left
		} else {
			t = t.right
		}
	}
	return t.class
}

type builder struct {
	x        mat.Matrix
	y        []int
	weights  []float64
	cfg      Config
	classes  int
	features int
	mtry     int
	rng      *rand.Rand
	imp      []float64
	root     float64 // weighted size of the root node
}

func (b *builder) weightOf(samples []int) (w float64) {
	for _, s := range samples {
		w += b.weights[b.y[s]]
	}
	return w
}

func (b *builder) counts(samples []int) []float64 {
	counts := make([]float64, b.classes)
	for _, s := range samples {
		counts[b.y[s]] += b.weights[b.y[s]]
	}
	return counts
}

// gini computes the Gini impurity of weighted class counts.
func gini(counts []float64) float64 {
	var total, sq float64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	for _, c := range counts {
		p := c / total
		sq += p * p
	}
	return 1 - sq
}

func majority(counts []float64) int {
	best := 0
	for c := 1; c < len(counts); c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func (b *builder) build(samples []int, depth int) *node {
	counts := b.counts(samples)
	parent := gini(counts)
	if parent == 0 ||
		len(samples) < b.cfg.MinSplit ||
		(b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) {
		return &node{leaf: true, class: majority(counts)}
	}
	feature, threshold, decrease, ok := b.bestSplit(samples, counts, parent)
	if !ok {
		return &node{leaf: true, class: majority(counts)}
	}
	var left, right []int
	for _, s := range samples {
		if b.x.At(s, feature) <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	b.imp[feature] += b.weightOf(samples) / b.root * decrease
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit scans a random feature subset for the threshold with the
// largest weighted impurity decrease.
func (b *builder) bestSplit(samples []int, counts []float64, parent float64) (
	feature int, threshold, decrease float64, ok bool) {
	total := b.weightOf(samples)
	type sv struct {
		v float64
		s int
	}
	order := make([]sv, len(samples))
	left := make([]float64, b.classes)
	for _, f := range b.rng.Perm(b.features)[:b.mtry] {
		for i, s := range samples {
			order[i] = sv{v: b.x.At(s, f), s: s}
		}
		sort.Slice(order, func(i, j int) bool { return order[i].v < order[j].v })
		for i := range left {
			left[i] = 0
		}
		var leftW float64
		for i := 0; i < len(order)-1; i++ {
			w := b.weights[b.y[order[i].s]]
			left[b.y[order[i].s]] += w
			leftW += w
			if order[i].v == order[i+1].v {
				continue
			}
			nl := i + 1
			if nl < b.cfg.MinLeaf || len(order)-nl < b.cfg.MinLeaf {
				continue
			}
			right := make([]float64, b.classes)
			for c := range right {
				right[c] = counts[c] - left[c]
			}
			d := parent -
				(leftW/total)*gini(left) -
				((total-leftW)/total)*gini(right)
			if d > decrease {
				feature = f
				threshold = (order[i].v + order[i+1].v) / 2
				decrease = d
				ok = true
			}
		}
	}
	return feature, threshold, decrease, ok
}
