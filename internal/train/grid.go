package train

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/Miao-block/specchem/internal/forest"
	"github.com/Miao-block/specchem/internal/stats"
)

// GridPoint is one hyperparameter combination.
type GridPoint struct {
	Trees       int
	MaxDepth    int
	MinSplit    int
	MinLeaf     int
	MaxFeatures string
}

var grid = struct {
	trees       []int
	maxDepth    []int
	minSplit    []int
	minLeaf     []int
	maxFeatures []string
}{
	trees:       []int{100, 300, 500},
	maxDepth:    []int{5, 10, 20},
	minSplit:    []int{2, 5},
	minLeaf:     []int{1, 2},
	maxFeatures: []string{"sqrt", "log2"},
}

// gridSearch exhaustively scores every grid combination with 3-fold
// stratified cross-validation and returns the best one.
func gridSearch(x *mat.Dense, y []int, classes int, weights []float64,
	seed int64, out io.Writer) (GridPoint, float64, error) {
	n, _ := x.Dims()
	folds := stats.StratifiedFolds(y, 3, seed)
	var (
		best      GridPoint
		bestScore = -1.0
		tried     int
	)
	for _, trees := range grid.trees {
		for _, depth := range grid.maxDepth {
			for _, split := range grid.minSplit {
				for _, leaf := range grid.minLeaf {
					for _, feats := range grid.maxFeatures {
						point := GridPoint{
							Trees:       trees,
							MaxDepth:    depth,
							MinSplit:    split,
							MinLeaf:     leaf,
							MaxFeatures: feats,
						}
						score, err := cvScore(x, y, classes, weights, point, folds, n, seed)
						if err != nil {
							return GridPoint{}, 0, err
						}
						tried++
						if score > bestScore {
							best = point
							bestScore = score
						}
					}
				}
			}
		}
	}
	fmt.Fprintf(out, "\nGrid search: %d configurations, 3-fold CV\n", tried)
	return best, bestScore, nil
}

func cvScore(x *mat.Dense, y []int, classes int, weights []float64,
	point GridPoint, folds [][]int, n int, seed int64) (float64, error) {
	cfg := forest.Config{
		Trees:       point.Trees,
		MaxDepth:    point.MaxDepth,
		MinSplit:    point.MinSplit,
		MinLeaf:     point.MinLeaf,
		MaxFeatures: point.MaxFeatures,
		Seed:        seed,
	}
	var sum float64
	for _, fold := range folds {
		rest := complement(fold, n)
		xRest, err := stats.SelectRows(x, rest)
		if err != nil {
			return 0, err
		}
		xFold, err := stats.SelectRows(x, fold)
		if err != nil {
			return 0, err
		}
		f := forest.Train(
			xRest,
			stats.SelectLabels(y, rest),
			classes, weights, cfg)
		sum += stats.Accuracy(
			stats.SelectLabels(y, fold),
			f.PredictAll(xFold))
	}
	return sum / float64(len(folds)), nil
}
