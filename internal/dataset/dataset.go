// Package dataset accumulates the per-molecule descriptor table and
// writes it to CSV. Rows are staged and committed atomically: a row
// that is never committed leaves no trace in the table, which is how a
// failed sample rolls back.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Miao-block/specchem/internal/spectrum"
)

// Schema fixes the column layout of the table: four energy columns,
// seven columns per excited state, and one intensity column per
// sampled wavelength.
type Schema struct {
	NumStates int
	Axis      spectrum.Axis
}

// Columns returns the data columns in order, not counting the Sample
// key column.
func (s Schema) Columns() []string {
	cols := []string{"TotalEnergy", "HOMO", "LUMO", "Gap"}
	for i := 1; i <= s.NumStates; i++ {
		cols = append(cols,
			fmt.Sprintf("E%d", i),
			fmt.Sprintf("Lambda%d", i),
			fmt.Sprintf("F%d", i),
			fmt.Sprintf("Type%d", i),
			fmt.Sprintf("Sr%d", i),
			fmt.Sprintf("HDI%d", i),
			fmt.Sprintf("EDI%d", i),
		)
	}
	for _, nm := range s.Axis.Points() {
		cols = append(cols, fmt.Sprintf("I%d", int(nm)))
	}
	return cols
}

// Width is the number of data columns: 4 + 7*NumStates + axis length.
func (s Schema) Width() int {
	return 4 + 7*s.NumStates + s.Axis.Len()
}

// Row is a staged record for one sample. Values set on a Row do not
// reach the table until Commit.
type Row struct {
	sample string
	cells  map[string]string
}

// SetFloat stores v under col, or a null cell when v is nil.
func (r *Row) SetFloat(col string, v *float64) {
	if v == nil {
		r.cells[col] = ""
		return
	}
	r.cells[col] = strconv.FormatFloat(*v, 'g', -1, 64)
}

func (r *Row) SetString(col, v string) {
	r.cells[col] = v
}

// SetSpectrum fills the intensity columns from s, which must be
// aligned with the schema axis.
func (r *Row) SetSpectrum(a spectrum.Axis, s spectrum.Spectrum) {
	for i, nm := range a.Points() {
		r.cells[fmt.Sprintf("I%d", int(nm))] = strconv.FormatFloat(s[i], 'g', -1, 64)
	}
}

// Table is the growing dataset, one committed row per sample.
type Table struct {
	schema Schema
	cols   []string
	rows   []*Row
}

func New(schema Schema) *Table {
	return &Table{schema: schema, cols: schema.Columns()}
}

func (t *Table) Schema() Schema { return t.schema }

func (t *Table) Len() int { return len(t.rows) }

// Samples returns the committed sample keys in commit order.
func (t *Table) Samples() []string {
	ret := make([]string, len(t.rows))
	for i, r := range t.rows {
		ret[i] = r.sample
	}
	return ret
}

// Begin stages a new row for sample. Unset columns commit as nulls.
func (t *Table) Begin(sample string) *Row {
	return &Row{sample: sample, cells: make(map[string]string)}
}

// Commit appends the staged row to the table. Every column is written
// in lock-step, so committed rows always have the full schema width.
func (t *Table) Commit(r *Row) {
	t.rows = append(t.rows, r)
}

// Record returns the cells of row i aligned with Columns, plus the
// sample key first.
func (t *Table) Record(i int) []string {
	rec := make([]string, 0, len(t.cols)+1)
	rec = append(rec, t.rows[i].sample)
	for _, col := range t.cols {
		rec = append(rec, t.rows[i].cells[col])
	}
	return rec
}

// WriteCSV writes the table, header first, to path.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := append([]string{"Sample"}, t.cols...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range t.rows {
		if err := w.Write(t.Record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// CheckpointPath names the snapshot file for a table of n rows:
// out.csv -> out_checkpoint_n.csv.
func CheckpointPath(output string, n int) string {
	base := strings.TrimSuffix(output, ".csv")
	return fmt.Sprintf("%s_checkpoint_%d.csv", base, n)
}
