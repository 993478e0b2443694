// Package multiwfn drives the Multiwfn wavefunction-analysis program
// to extract hole-electron descriptors for individual excited states.
//
// Multiwfn is menu-driven on stdin, so the implementation feeds it a
// fixed command script and scrapes the descriptors out of its text
// output. Anything that goes wrong degrades to absent descriptors;
// a failed analysis must never take the enclosing sample down.
package multiwfn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds one hole-electron analysis run.
const DefaultTimeout = 120 * time.Second

// Descriptors are the three per-state scalars extracted from the
// hole-electron analysis. Each is nil when Multiwfn did not print it.
type Descriptors struct {
	Sr  *float64 // hole-electron overlap integral
	HDI *float64 // hole delocalization index
	EDI *float64 // electron delocalization index
}

// Analyzer computes descriptors for one excited state of a molecule
// described by a formatted checkpoint file and the Gaussian output
// carrying its transition data. The two may live in different
// directories.
type Analyzer interface {
	Descriptors(ctx context.Context, fchk, out string, state int) (Descriptors, error)
}

// CLI runs the Multiwfn binary as a child process.
type CLI struct {
	Path    string        // Multiwfn executable
	Timeout time.Duration // per-state wall clock, DefaultTimeout if zero
	Logger  *slog.Logger
}

func NewCLI(path string, logger *slog.Logger) *CLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{Path: path, Timeout: DefaultTimeout, Logger: logger}
}

// Extraction patterns, one per descriptor, each optional.
var (
	srRe  = regexp.MustCompile(`Sr index[^:]*:\s*(-?\d+\.?\d*)`)
	hdiRe = regexp.MustCompile(`HDI\s*=\s*(-?\d+\.?\d*)`)
	ediRe = regexp.MustCompile(`EDI\s*=\s*(-?\d+\.?\d*)`)
)

// script is the menu walk for one hole-electron analysis: enter the
// excited-state analysis module, pick hole-electron, name the Gaussian
// output carrying the transition data, select the state, compute, and
// back out to quit.
func script(outFile string, state int) string {
	return strings.Join([]string{
		"18",    // electron excitation analysis
		"1",     // hole-electron analysis
		outFile, // file with excitation information
		strconv.Itoa(state),
		"1", // compute and print indices
		"0", // return
		"0", // return
		"q",
	}, "\n") + "\n"
}

// Descriptors runs one analysis against a temporary copy of fchk,
// with the given Gaussian output supplying the transition amplitudes.
// A timeout, non-zero exit, or unparseable output returns zero-value
// Descriptors and the error.
func (c *CLI) Descriptors(ctx context.Context, fchk, out string, state int) (Descriptors, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Multiwfn writes scratch files next to its input, so work on a
	// copy in a temp directory.
	tmpDir, err := os.MkdirTemp("", "multiwfn")
	if err != nil {
		return Descriptors{}, err
	}
	defer os.RemoveAll(tmpDir)
	tmpFchk := filepath.Join(tmpDir, filepath.Base(fchk))
	if err := copyFile(fchk, tmpFchk); err != nil {
		return Descriptors{}, err
	}
	// the command runs in tmpDir, so the output path must stay valid
	// from there
	outFile, err := filepath.Abs(out)
	if err != nil {
		return Descriptors{}, err
	}

	cmd := exec.CommandContext(ctx, c.Path, tmpFchk)
	cmd.Dir = tmpDir
	cmd.Stdin = strings.NewReader(script(outFile, state))
	raw, err := cmd.Output()
	if err != nil {
		logger.Warn("multiwfn run failed",
			"fchk", fchk, "state", state, "error", err)
		return Descriptors{}, fmt.Errorf("multiwfn state %d: %w", state, err)
	}
	return parse(raw), nil
}

// parse pulls the three descriptors out of Multiwfn's output. Missing
// matches stay nil.
func parse(out []byte) (d Descriptors) {
	d.Sr = match(srRe, out)
	d.HDI = match(hdiRe, out)
	d.EDI = match(ediRe, out)
	return d
}

func match(re *regexp.Regexp, out []byte) *float64 {
	m := re.FindSubmatch(out)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return nil
	}
	return &v
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
