package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Miao-block/specchem/internal/extract"
	"github.com/Miao-block/specchem/internal/multiwfn"
	"github.com/Miao-block/specchem/internal/spectrum"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build the descriptor dataset from TDDFT outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		applyStringFlag(cmd, "out-dir", &conf.Paths.OutDir)
		applyStringFlag(cmd, "fchk-dir", &conf.Paths.FchkDir)
		applyStringFlag(cmd, "output", &conf.Paths.OutputCSV)
		applyStringFlag(cmd, "multiwfn", &conf.Paths.Multiwfn)
		if cmd.Flags().Changed("states") {
			conf.Extract.NumStates, _ = cmd.Flags().GetInt("states")
		}
		if conf.Paths.OutDir == "" {
			return fmt.Errorf("--out-dir (or [paths] out_dir) is required")
		}
		if conf.Paths.OutputCSV == "" {
			conf.Paths.OutputCSV = "dataset.csv"
		}

		ctx, stop := signal.NotifyContext(context.Background(),
			syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var analyzer multiwfn.Analyzer
		if conf.Paths.Multiwfn != "" {
			analyzer = multiwfn.NewCLI(conf.Paths.Multiwfn, slog.Default())
		} else {
			slog.Info("no multiwfn configured, descriptors will be null")
		}

		e := &extract.Extractor{
			OutDir:          conf.Paths.OutDir,
			FchkDir:         conf.Paths.FchkDir,
			OutputCSV:       conf.Paths.OutputCSV,
			NumStates:       conf.Extract.NumStates,
			Axis:            spectrum.Axis{Min: conf.Extract.LambdaMin, Max: conf.Extract.LambdaMax},
			Analyzer:        analyzer,
			MaxSamples:      conf.Extract.MaxSamples,
			CheckpointEvery: conf.Extract.CheckpointEvery,
			Logger:          slog.Default(),
		}
		tbl, err := e.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s\n",
			tbl.Len(), conf.Paths.OutputCSV)
		return nil
	},
}

func init() {
	extractCmd.Flags().String("out-dir", "", "directory of Gaussian .out files")
	extractCmd.Flags().String("fchk-dir", "", "directory of .fchk files (default: out-dir)")
	extractCmd.Flags().String("output", "", "output CSV path")
	extractCmd.Flags().String("multiwfn", "", "Multiwfn executable (empty disables descriptors)")
	extractCmd.Flags().Int("states", 6, "number of excited states per molecule")
}
