// Package train fits and evaluates the spectral classifier: scale,
// project onto principal components, train a weighted random forest,
// report the standard metrics, and run the importance, cross-
// validation, and grid-search analyses.
package train

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/Miao-block/specchem/internal/forest"
	"github.com/Miao-block/specchem/internal/stats"
)

// Options configure one training run.
type Options struct {
	CSV          string
	LabelColumn  string
	Labels       []string // fixed class ordering for weights and reports
	Components   int
	Trees        int
	MaxDepth     int
	ClassWeights map[string]float64
	Seed         int64
	TestFraction float64
	Folds        int    // cross-validation folds, default 5
	PlotDir      string // empty disables plot rendering
	Out          io.Writer
	Logger       *slog.Logger
}

// Run executes the full pipeline. Scaling is fit on the whole matrix
// before the split.
func Run(opts Options) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	folds := opts.Folds
	if folds <= 0 {
		folds = 5
	}

	x, y, err := LoadCSV(opts.CSV, opts.LabelColumn, opts.Labels)
	if err != nil {
		return err
	}
	n, d := x.Dims()
	logger.Info("dataset loaded", "samples", n, "features", d)

	scaled := stats.Standardize(x)
	projected, err := stats.PCA(scaled, opts.Components)
	if err != nil {
		return err
	}
	_, k := projected.Dims()
	logger.Info("features projected", "components", k)

	trainIdx, testIdx := stats.StratifiedSplit(y, opts.TestFraction, opts.Seed)
	xTrain, err := stats.SelectRows(projected, trainIdx)
	if err != nil {
		return fmt.Errorf("train split: %w", err)
	}
	yTrain := stats.SelectLabels(y, trainIdx)
	xTest, err := stats.SelectRows(projected, testIdx)
	if err != nil {
		return fmt.Errorf("test split: %w", err)
	}
	yTest := stats.SelectLabels(y, testIdx)

	weights := weightVector(opts.Labels, opts.ClassWeights)
	cfg := forest.Config{
		Trees:       opts.Trees,
		MaxDepth:    opts.MaxDepth,
		MaxFeatures: "sqrt",
		Seed:        opts.Seed,
	}
	model := forest.Train(xTrain, yTrain, len(opts.Labels), weights, cfg)
	pred := model.PredictAll(xTest)
	conf := stats.Confusion(yTest, pred, len(opts.Labels))

	fmt.Fprintf(out, "Accuracy: %.4f\n", stats.Accuracy(yTest, pred))
	fmt.Fprintf(out, "Macro F1: %.4f\n", stats.MacroF1(conf))
	fmt.Fprintf(out, "MCC:      %.4f\n\n", stats.MCC(conf))
	fmt.Fprint(out, stats.Report(conf, opts.Labels))
	fmt.Fprintln(out, "\nConfusion matrix (rows true, cols predicted):")
	for c, label := range opts.Labels {
		fmt.Fprintf(out, "%10s", label)
		for j := range opts.Labels {
			fmt.Fprintf(out, "%6d", conf[c][j])
		}
		fmt.Fprintln(out)
	}

	gini := model.Importances()
	fmt.Fprintln(out, "\nTop components by Gini importance:")
	printRanked(out, gini, 10)

	permMean, permRaw := stats.PermutationImportance(
		model, xTest, yTest, 10, opts.Seed)
	fmt.Fprintln(out, "\nTop components by permutation importance:")
	printRanked(out, permMean, 10)

	fmt.Fprintf(out, "\n%d-fold cross-validation:\n", folds)
	var cvSum float64
	for i, fold := range stats.StratifiedFolds(y, folds, opts.Seed) {
		rest := complement(fold, n)
		xRest, err := stats.SelectRows(projected, rest)
		if err != nil {
			return fmt.Errorf("fold %d: %w", i+1, err)
		}
		xFold, err := stats.SelectRows(projected, fold)
		if err != nil {
			return fmt.Errorf("fold %d: %w", i+1, err)
		}
		f := forest.Train(
			xRest,
			stats.SelectLabels(y, rest),
			len(opts.Labels), weights, cfg)
		acc := stats.Accuracy(
			stats.SelectLabels(y, fold),
			f.PredictAll(xFold))
		cvSum += acc
		fmt.Fprintf(out, "  fold %d: %.4f\n", i+1, acc)
	}
	fmt.Fprintf(out, "  mean:   %.4f\n", cvSum/float64(folds))

	// the grid search scores with frequency-balanced class weights,
	// not the fixed weights of the main model
	best, score, err := gridSearch(projected, y, len(opts.Labels),
		balancedWeights(y, len(opts.Labels)), opts.Seed, out)
	if err != nil {
		return fmt.Errorf("grid search: %w", err)
	}
	fmt.Fprintf(out, "\nBest grid configuration: %+v (accuracy %.4f)\n",
		best, score)

	if opts.PlotDir != "" {
		if err := renderPlots(opts.PlotDir, conf, opts.Labels, gini, permRaw); err != nil {
			return fmt.Errorf("rendering plots: %w", err)
		}
		logger.Info("plots written", "dir", opts.PlotDir)
	}
	return nil
}

// weightVector orders the per-class weight map by label index.
// Unlisted classes weigh 1.
func weightVector(labels []string, m map[string]float64) []float64 {
	w := make([]float64, len(labels))
	for i, label := range labels {
		w[i] = 1
		if v, ok := m[label]; ok {
			w[i] = v
		}
	}
	return w
}

// balancedWeights computes n / (k * n_c) per class.
func balancedWeights(y []int, classes int) []float64 {
	counts := make([]float64, classes)
	for _, c := range y {
		counts[c]++
	}
	w := make([]float64, classes)
	for c := range w {
		if counts[c] > 0 {
			w[c] = float64(len(y)) / (float64(classes) * counts[c])
		}
	}
	return w
}

func complement(idx []int, n int) []int {
	in := make([]bool, n)
	for _, i := range idx {
		in[i] = true
	}
	var ret []int
	for i := 0; i < n; i++ {
		if !in[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

// printRanked writes the top-k features by score, named PC1..PCn.
func printRanked(w io.Writer, scores []float64, k int) {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if k > len(order) {
		k = len(order)
	}
	for _, i := range order[:k] {
		fmt.Fprintf(w, "  PC%-4d %.5f\n", i+1, scores[i])
	}
}
