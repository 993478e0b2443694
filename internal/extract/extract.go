// Package extract turns paired Gaussian TDDFT outputs and formatted
// checkpoints into one descriptor row per molecule, with a synthetic
// absorption spectrum, and writes the accumulated table to CSV.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Miao-block/specchem/internal/dataset"
	"github.com/Miao-block/specchem/internal/gaussian"
	"github.com/Miao-block/specchem/internal/multiwfn"
	"github.com/Miao-block/specchem/internal/spectrum"
)

const (
	// WavenumberToEV converts cm^-1 to eV.
	WavenumberToEV = 1.2398419843320026e-4
	// Excitation energies above this are taken to be wavenumbers.
	wavenumberCut = 1000.0
)

// EnergyEV normalizes a raw excitation energy to eV: values above
// 1000 are treated as wavenumbers, anything else is already eV.
func EnergyEV(raw float64) float64 {
	if raw > wavenumberCut {
		return raw * WavenumberToEV
	}
	return raw
}

// Wavelength converts an excitation energy in eV to nm. Zero or
// absent energy has no wavelength.
func Wavelength(ev *float64) *float64 {
	if ev == nil || *ev == 0 {
		return nil
	}
	nm := 1240 / *ev
	return &nm
}

// Extractor drives the extraction loop over a directory of .out
// files. Analyzer may be nil, in which case the three wavefunction
// descriptors stay null.
type Extractor struct {
	OutDir    string
	FchkDir   string // empty means same directory as OutDir
	OutputCSV string
	NumStates int
	Axis      spectrum.Axis
	Analyzer  multiwfn.Analyzer

	MaxSamples      int // stop after this many committed samples
	CheckpointEvery int // snapshot cadence, in committed samples

	Logger *slog.Logger
}

// Run processes the directory and writes the final CSV. The returned
// table is the committed dataset, also useful to callers that want
// counts. Per-sample failures roll back that sample and continue.
func (e *Extractor) Run(ctx context.Context) (*dataset.Table, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fchkDir := e.FchkDir
	if fchkDir == "" {
		fchkDir = e.OutDir
	}
	tbl := dataset.New(dataset.Schema{NumStates: e.NumStates, Axis: e.Axis})

	entries, err := os.ReadDir(e.OutDir)
	if err != nil {
		return tbl, err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return tbl, err
		}
		if tbl.Len() >= e.MaxSamples {
			logger.Info("sample cap reached", "samples", tbl.Len())
			break
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".out") {
			continue
		}
		sample := strings.TrimSuffix(entry.Name(), ".out")
		outPath := filepath.Join(e.OutDir, entry.Name())
		fchkPath := filepath.Join(fchkDir, sample+".fchk")
		if _, err := os.Stat(fchkPath); err != nil {
			logger.Info("no matching fchk, skipping", "sample", sample)
			continue
		}

		row, err := e.sample(ctx, tbl, sample, outPath, fchkPath)
		if err != nil {
			// the staged row is dropped whole, nothing reached the table
			logger.Error("sample rolled back", "sample", sample, "error", err)
			continue
		}
		tbl.Commit(row)
		logger.Info("sample committed", "sample", sample, "total", tbl.Len())

		if e.CheckpointEvery > 0 && tbl.Len()%e.CheckpointEvery == 0 {
			path := dataset.CheckpointPath(e.OutputCSV, tbl.Len())
			if err := tbl.WriteCSV(path); err != nil {
				logger.Error("checkpoint write failed", "path", path, "error", err)
			} else {
				logger.Info("checkpoint written", "path", path, "rows", tbl.Len())
			}
		}
	}
	if err := tbl.WriteCSV(e.OutputCSV); err != nil {
		return tbl, fmt.Errorf("writing dataset: %w", err)
	}
	logger.Info("extraction finished", "samples", tbl.Len(), "output", e.OutputCSV)
	return tbl, nil
}

// sample stages one row. Any returned error means the caller must
// discard the row; committed tables never see partial samples.
func (e *Extractor) sample(ctx context.Context, tbl *dataset.Table,
	sample, outPath, fchkPath string) (*dataset.Row, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out, err := gaussian.ParseOutput(outPath)
	if err != nil {
		return nil, err
	}
	row := tbl.Begin(sample)
	row.SetFloat("TotalEnergy", out.TotalEnergy())
	homo, lumo, gap := out.FrontierOrbitals()
	row.SetFloat("HOMO", homo)
	row.SetFloat("LUMO", lumo)
	row.SetFloat("Gap", gap)

	spec := spectrum.New(e.Axis)
	for i := 1; i <= e.NumStates; i++ {
		st := out.State(i)
		if st == nil {
			// all seven state columns stay null
			continue
		}
		ev := EnergyEV(st.Energy)
		row.SetFloat(fmt.Sprintf("E%d", i), &ev)
		lambda := Wavelength(&ev)
		row.SetFloat(fmt.Sprintf("Lambda%d", i), lambda)
		row.SetFloat(fmt.Sprintf("F%d", i), st.Strength)
		typ := "Triplet"
		if strings.Contains(st.Label, "Singlet") {
			typ = "Singlet"
		}
		row.SetString(fmt.Sprintf("Type%d", i), typ)

		if e.Analyzer != nil {
			d, err := e.Analyzer.Descriptors(ctx, fchkPath, outPath, i)
			if err != nil {
				// degrade to nulls, keep going with the next state
				logger.Warn("descriptor analysis failed",
					"sample", sample, "state", i, "error", err)
				d = multiwfn.Descriptors{}
			}
			row.SetFloat(fmt.Sprintf("Sr%d", i), d.Sr)
			row.SetFloat(fmt.Sprintf("HDI%d", i), d.HDI)
			row.SetFloat(fmt.Sprintf("EDI%d", i), d.EDI)
		}

		if lambda != nil && st.Strength != nil {
			spec.AddPeak(e.Axis, *lambda, *st.Strength)
		}
	}
	row.SetSpectrum(e.Axis, spec)
	return row, nil
}
