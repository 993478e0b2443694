package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Miao-block/specchem/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert .chk checkpoints to .fchk with formchk",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		applyStringFlag(cmd, "chk-dir", &conf.Paths.ChkDir)
		applyStringFlag(cmd, "fchk-dir", &conf.Paths.FchkDir)
		applyStringFlag(cmd, "formchk", &conf.Paths.Formchk)
		if conf.Paths.ChkDir == "" {
			return fmt.Errorf("--chk-dir (or [paths] chk_dir) is required")
		}

		ctx, stop := signal.NotifyContext(context.Background(),
			syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c := &convert.Converter{
			Formchk: conf.Paths.Formchk,
			ChkDir:  conf.Paths.ChkDir,
			FchkDir: conf.Paths.FchkDir,
			Logger:  slog.Default(),
		}
		sum, err := c.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"converted %d, skipped %d, failed %d\n",
			sum.Converted, sum.Skipped, sum.Failed)
		return nil
	},
}

func init() {
	convertCmd.Flags().String("chk-dir", "", "directory of .chk files")
	convertCmd.Flags().String("fchk-dir", "", "destination directory (default: alongside sources)")
	convertCmd.Flags().String("formchk", "", "formchk executable")
}

// applyStringFlag overrides dst when the flag was set on the command
// line, so flags win over the config file.
func applyStringFlag(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		*dst = v
	}
}
