package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "formchk", conf.Paths.Formchk)
	assert.Equal(t, 6, conf.Extract.NumStates)
	assert.Equal(t, 100, conf.Extract.MaxSamples)
	assert.Equal(t, 5, conf.Extract.CheckpointEvery)
	assert.Equal(t, 100.0, conf.Extract.LambdaMin)
	assert.Equal(t, 600.0, conf.Extract.LambdaMax)
	assert.Equal(t, 54, conf.Train.Components)
	assert.Equal(t, 500, conf.Train.Trees)
	assert.Equal(t, 10, conf.Train.MaxDepth)
	assert.Equal(t, []string{"BETX", "PAHs", "Others"}, conf.Train.Labels)
	assert.Equal(t, 0.4, conf.Train.TestFraction)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specchem.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[paths]
chk_dir = "/calc/chk"
out_dir = "/calc/out"
output_csv = "descriptors.csv"
multiwfn = "/opt/Multiwfn/Multiwfn"

[extract]
num_states = 10

[train]
seed = 7

[train.class_weights]
BETX = 3.0
`), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/calc/chk", conf.Paths.ChkDir)
	assert.Equal(t, "descriptors.csv", conf.Paths.OutputCSV)
	assert.Equal(t, 10, conf.Extract.NumStates)
	assert.Equal(t, int64(7), conf.Train.Seed)
	assert.Equal(t, 3.0, conf.Train.ClassWeights["BETX"])
	// untouched sections keep their defaults
	assert.Equal(t, 100, conf.Extract.MaxSamples)
	assert.Equal(t, "formchk", conf.Paths.Formchk)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.toml")
	assert.Error(t, err)
}
