package train

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// confusionGrid adapts a confusion matrix to plotter.GridXYZ. Rows
// are drawn bottom-up, so true-class 0 sits at the top.
type confusionGrid struct {
	conf [][]int
}

func (g confusionGrid) Dims() (c, r int) { return len(g.conf), len(g.conf) }
func (g confusionGrid) X(c int) float64  { return float64(c) }
func (g confusionGrid) Y(r int) float64  { return float64(r) }
func (g confusionGrid) Z(c, r int) float64 {
	return float64(g.conf[len(g.conf)-1-r][c])
}

// renderPlots writes the confusion-matrix heatmap, the Gini
// importance bar chart, and the permutation-importance box plot as
// PNGs under dir.
func renderPlots(dir string, conf [][]int, labels []string,
	gini []float64, permRaw [][]float64) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := confusionHeatmap(dir, conf, labels); err != nil {
		return err
	}
	if err := importanceBars(dir, gini); err != nil {
		return err
	}
	return permutationBoxes(dir, permRaw)
}

func confusionHeatmap(dir string, conf [][]int, labels []string) error {
	p := plot.New()
	p.Title.Text = "Confusion matrix"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "True"
	p.Add(plotter.NewHeatMap(confusionGrid{conf: conf}, palette.Heat(12, 1)))
	p.NominalX(labels...)
	reversed := make([]string, len(labels))
	for i, l := range labels {
		reversed[len(labels)-1-i] = l
	}
	p.NominalY(reversed...)
	return p.Save(5*vg.Inch, 4*vg.Inch, filepath.Join(dir, "confusion_matrix.png"))
}

func importanceBars(dir string, gini []float64) error {
	top := rankedTop(gini, 15)
	vals := make(plotter.Values, len(top))
	names := make([]string, len(top))
	for i, j := range top {
		vals[i] = gini[j]
		names[i] = fmt.Sprintf("PC%d", j+1)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Gini importance"
	p.Y.Label.Text = "Mean decrease in impurity"
	p.Add(bars)
	p.NominalX(names...)
	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(dir, "gini_importance.png"))
}

func permutationBoxes(dir string, raw [][]float64) error {
	means := make([]float64, len(raw))
	for j, reps := range raw {
		for _, v := range reps {
			means[j] += v
		}
		means[j] /= float64(len(reps))
	}
	top := rankedTop(means, 10)
	p := plot.New()
	p.Title.Text = "Permutation importance"
	p.Y.Label.Text = "Accuracy drop"
	names := make([]string, len(top))
	for i, j := range top {
		box, err := plotter.NewBoxPlot(vg.Points(18), float64(i),
			plotter.Values(raw[j]))
		if err != nil {
			return err
		}
		p.Add(box)
		names[i] = fmt.Sprintf("PC%d", j+1)
	}
	p.NominalX(names...)
	return p.Save(6*vg.Inch, 4*vg.Inch,
		filepath.Join(dir, "permutation_importance.png"))
}

func rankedTop(scores []float64, k int) []int {
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
	return order[:k]
}
