// Package config loads the pipeline configuration from a TOML file,
// filling in defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Paths names the external inputs, outputs, and tools of the pipeline.
type Paths struct {
	ChkDir    string `toml:"chk_dir"`
	Formchk   string `toml:"formchk"`
	OutDir    string `toml:"out_dir"`
	FchkDir   string `toml:"fchk_dir"`
	OutputCSV string `toml:"output_csv"`
	Multiwfn  string `toml:"multiwfn"`
}

// Extract controls the descriptor-extraction stage.
type Extract struct {
	NumStates       int     `toml:"num_states"`
	LambdaMin       float64 `toml:"lambda_min"`
	LambdaMax       float64 `toml:"lambda_max"`
	MaxSamples      int     `toml:"max_samples"`
	CheckpointEvery int     `toml:"checkpoint_every"`
}

// Train controls the classifier stage.
type Train struct {
	LabelColumn  string             `toml:"label_column"`
	Labels       []string           `toml:"labels"`
	Components   int                `toml:"components"`
	Trees        int                `toml:"trees"`
	MaxDepth     int                `toml:"max_depth"`
	ClassWeights map[string]float64 `toml:"class_weights"`
	Seed         int64              `toml:"seed"`
	TestFraction float64            `toml:"test_fraction"`
	PlotDir      string             `toml:"plot_dir"`
}

type Config struct {
	Paths   Paths   `toml:"paths"`
	Extract Extract `toml:"extract"`
	Train   Train   `toml:"train"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Paths: Paths{
			Formchk: "formchk",
		},
		Extract: Extract{
			NumStates:       6,
			LambdaMin:       100,
			LambdaMax:       600,
			MaxSamples:      100,
			CheckpointEvery: 5,
		},
		Train: Train{
			LabelColumn: "Class",
			Labels:      []string{"BETX", "PAHs", "Others"},
			Components:  54,
			Trees:       500,
			MaxDepth:    10,
			ClassWeights: map[string]float64{
				"BETX":   5,
				"PAHs":   1,
				"Others": 2,
			},
			Seed:         42,
			TestFraction: 0.4,
		},
	}
}

// Load reads filename into a Config, starting from Default. An empty
// filename returns the defaults unchanged.
func Load(filename string) (Config, error) {
	conf := Default()
	if filename == "" {
		return conf, nil
	}
	cont, err := os.ReadFile(filename)
	if err != nil {
		return conf, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(cont, &conf); err != nil {
		return conf, fmt.Errorf("parsing config: %w", err)
	}
	return conf, nil
}
