package train

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LoadCSV reads the extractor's dataset and returns the numeric
// feature matrix and the encoded labels. Features are every column
// except the Sample key, the label column, and the categorical
// Type columns. Empty cells impute to zero so PCA sees a dense
// matrix.
func LoadCSV(path, labelColumn string, labels []string) (*mat.Dense, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("dataset %s has no rows", path)
	}
	header := records[0]

	labelIdx := -1
	var featureIdx []int
	for i, col := range header {
		switch {
		case col == labelColumn:
			labelIdx = i
		case col == "Sample" || strings.HasPrefix(col, "Type"):
		default:
			featureIdx = append(featureIdx, i)
		}
	}
	if labelIdx < 0 {
		return nil, nil, fmt.Errorf("dataset has no %q column", labelColumn)
	}

	classOf := make(map[string]int, len(labels))
	for i, label := range labels {
		classOf[label] = i
	}

	rows := records[1:]
	x := mat.NewDense(len(rows), len(featureIdx), nil)
	y := make([]int, len(rows))
	for r, rec := range rows {
		class, ok := classOf[rec[labelIdx]]
		if !ok {
			return nil, nil, fmt.Errorf("row %d: unknown class %q",
				r+1, rec[labelIdx])
		}
		y[r] = class
		for j, c := range featureIdx {
			cell := rec[c]
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d, column %s: %w",
					r+1, header[c], err)
			}
			x.Set(r, j, v)
		}
	}
	return x, y, nil
}
