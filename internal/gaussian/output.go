// Package gaussian parses the text output of Gaussian TDDFT
// calculations: SCF energies, molecular-orbital eigenvalues, and
// excited-state transitions.
package gaussian

import (
	"bufio"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	// from https://physics.nist.gov/cgi-bin/cuu/Value?hrev
	HartreeToEV = 27.211_386_245_988
)

// Errors
var (
	ErrFileNotFound   = errors.New("output file not found")
	ErrEnergyNotFound = errors.New("energy not found in Gaussian output")
)

// ExcitedState is one TDDFT root as printed in the output.
type ExcitedState struct {
	Index    int
	Label    string  // state symmetry, e.g. "Singlet-A"
	Energy   float64 // excitation energy as printed (eV)
	Strength *float64
}

// Output holds everything the extractor needs from one .out file.
type Output struct {
	SCFEnergies  []float64 // hartree, in order of appearance
	OccEnergies  []float64 // occupied MO eigenvalues, hartree
	VirtEnergies []float64 // virtual MO eigenvalues, hartree
	States       []ExcitedState
	SkippedMO    int // eigenvalue fields that did not parse
}

var stateRe = regexp.MustCompile(
	`Excited State\s+(\d+):\s+(\S+)\s+(-?\d+\.?\d*)\s*eV` +
		`(?:\s+(-?\d+\.?\d*)\s*nm)?(?:\s+f=(-?\d+\.?\d*))?`)

// ParseOutput reads a Gaussian output file. A file with no SCF energy
// is still returned; TotalEnergy reports the absence.
func ParseOutput(filename string) (*Output, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, ErrFileNotFound
	}
	defer f.Close()
	out := &Output{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "SCF Done"):
			fields := strings.Fields(line)
			for i, field := range fields {
				if field == "=" && i+1 < len(fields) {
					v, err := strconv.ParseFloat(fields[i+1], 64)
					if err == nil {
						out.SCFEnergies = append(out.SCFEnergies, v)
					}
					break
				}
			}
		case strings.Contains(line, "Alpha  occ. eigenvalues"):
			vs, skipped := eigenvalues(line)
			out.OccEnergies = append(out.OccEnergies, vs...)
			out.SkippedMO += skipped
		case strings.Contains(line, "Alpha virt. eigenvalues"):
			vs, skipped := eigenvalues(line)
			out.VirtEnergies = append(out.VirtEnergies, vs...)
			out.SkippedMO += skipped
		case strings.Contains(line, "Excited State"):
			m := stateRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			idx, _ := strconv.Atoi(m[1])
			energy, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				continue
			}
			state := ExcitedState{Index: idx, Label: m[2], Energy: energy}
			if m[5] != "" {
				f, err := strconv.ParseFloat(m[5], 64)
				if err == nil {
					state.Strength = &f
				}
			}
			out.States = append(out.States, state)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if out.SkippedMO > 0 {
		slog.Warn("unparseable MO eigenvalue fields skipped",
			"file", filename, "fields", out.SkippedMO)
	}
	return out, nil
}

// eigenvalues parses the numbers after the "--" separator of an MO
// eigenvalue line. Gaussian runs values together at high magnitude, so
// fields that fail to parse are counted and skipped rather than split
// heuristically.
func eigenvalues(line string) (ret []float64, skipped int) {
	_, rest, found := strings.Cut(line, "--")
	if !found {
		return nil, 0
	}
	for _, field := range strings.Fields(rest) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			skipped++
			continue
		}
		ret = append(ret, v)
	}
	return ret, skipped
}

// TotalEnergy returns the last SCF energy in hartree, or nil if none
// was found.
func (o *Output) TotalEnergy() *float64 {
	if len(o.SCFEnergies) == 0 {
		return nil
	}
	e := o.SCFEnergies[len(o.SCFEnergies)-1]
	return &e
}

// FrontierOrbitals returns the HOMO and LUMO energies and their gap,
// all in eV. Any of the three is nil when the orbital data are
// incomplete.
func (o *Output) FrontierOrbitals() (homo, lumo, gap *float64) {
	if len(o.OccEnergies) == 0 || len(o.VirtEnergies) == 0 {
		return nil, nil, nil
	}
	h := o.OccEnergies[len(o.OccEnergies)-1] * HartreeToEV
	l := o.VirtEnergies[0] * HartreeToEV
	g := l - h
	return &h, &l, &g
}

// State returns the excited state with 1-based index i, or nil.
func (o *Output) State(i int) *ExcitedState {
	for j := range o.States {
		if o.States[j].Index == i {
			return &o.States[j]
		}
	}
	return nil
}
