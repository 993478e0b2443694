// specchem is a three-stage pipeline for building and modeling
// synthetic absorption spectra from Gaussian TDDFT calculations:
//
//	specchem convert   format binary checkpoints with formchk
//	specchem extract   parse outputs into the descriptor dataset
//	specchem train     fit and evaluate the spectral classifier
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Miao-block/specchem/internal/config"
)

var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "specchem",
	Short:         "TDDFT spectral dataset and classification pipeline",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"path to TOML config file")
	rootCmd.AddCommand(convertCmd, extractCmd, trainCmd)
}

// loadConfig reads the config file named by --config, defaults if
// none was given.
func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
