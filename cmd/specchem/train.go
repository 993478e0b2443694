package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Miao-block/specchem/internal/train"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and evaluate the spectral classifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		applyStringFlag(cmd, "dataset", &conf.Paths.OutputCSV)
		applyStringFlag(cmd, "plot-dir", &conf.Train.PlotDir)
		if conf.Paths.OutputCSV == "" {
			return fmt.Errorf("--dataset (or [paths] output_csv) is required")
		}

		return train.Run(train.Options{
			CSV:          conf.Paths.OutputCSV,
			LabelColumn:  conf.Train.LabelColumn,
			Labels:       conf.Train.Labels,
			Components:   conf.Train.Components,
			Trees:        conf.Train.Trees,
			MaxDepth:     conf.Train.MaxDepth,
			ClassWeights: conf.Train.ClassWeights,
			Seed:         conf.Train.Seed,
			TestFraction: conf.Train.TestFraction,
			PlotDir:      conf.Train.PlotDir,
			Out:          cmd.OutOrStdout(),
			Logger:       slog.Default(),
		})
	},
}

func init() {
	trainCmd.Flags().String("dataset", "", "dataset CSV from the extract stage")
	trainCmd.Flags().String("plot-dir", "", "write PNG plots here (empty disables)")
}
