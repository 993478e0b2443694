// Package convert batch-converts Gaussian binary checkpoints (.chk)
// to formatted checkpoints (.fchk) with the external formchk tool.
package convert

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter walks ChkDir and formats every .chk that does not already
// have a formatted counterpart. Failures are logged and skipped; a
// bad file never aborts the batch.
type Converter struct {
	Formchk string // formchk executable
	ChkDir  string
	FchkDir string // destination; empty means alongside the source
	Logger  *slog.Logger
}

// Summary counts the outcomes of one batch.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
}

// Run converts the directory. The context is checked between files;
// cancellation stops the batch after the in-flight conversion.
func (c *Converter) Run(ctx context.Context) (Summary, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var sum Summary
	entries, err := os.ReadDir(c.ChkDir)
	if err != nil {
		return sum, err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".chk") {
			continue
		}
		src := filepath.Join(c.ChkDir, entry.Name())
		dst := c.destination(entry.Name())
		if _, err := os.Stat(dst); err == nil {
			logger.Info("fchk exists, skipping", "file", entry.Name())
			sum.Skipped++
			continue
		}
		if err := exec.CommandContext(ctx, c.Formchk, src, dst).Run(); err != nil {
			logger.Error("formchk failed", "file", entry.Name(), "error", err)
			sum.Failed++
			continue
		}
		logger.Info("converted", "file", entry.Name())
		sum.Converted++
	}
	return sum, nil
}

func (c *Converter) destination(name string) string {
	fchk := strings.TrimSuffix(name, ".chk") + ".fchk"
	if c.FchkDir != "" {
		return filepath.Join(c.FchkDir, fchk)
	}
	return filepath.Join(c.ChkDir, fchk)
}
