package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const AppName = "partedit"

// Version, Commit, and BuildTime are populated by main from -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Execute builds and runs the root command: a scriptable, non-interactive
// surface over the label engine (list/create/dump/apply/verify/types),
// standing in for the full-screen session a curses front end would drive.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:     AppName,
		Short:   AppName + " - scriptable partition-table editor",
		Version: Version,
		Long: AppName + ` edits MBR, GPT, and BSD disklabel partition tables: list a
device's table, create a blank label, dump one to a script, apply a script
back, or verify a label's invariants. Each subcommand opens exactly one
device for its own duration; there is no persisted session state.`,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s {{.Version}} (commit %s, built %s)\n", AppName, Commit, BuildTime))

	rootCmd.PersistentFlags().String("color", "auto", "colorize output: auto, always, or never")
	rootCmd.PersistentFlags().Bool("zero", false, "ignore any existing label and start from a blank table")
	rootCmd.PersistentFlags().Bool("read-only", false, "open the device read-only and refuse any write")
	rootCmd.PersistentFlags().Uint64("sector-size", 0, "override the probed logical sector size (512, 1024, 2048, or 4096)")
	rootCmd.PersistentFlags().String("lock", "yes", "advisory device locking: yes, no, or nonblock")

	rootCmd.AddCommand(DefineListCommand())
	rootCmd.AddCommand(DefineCreateCommand())
	rootCmd.AddCommand(DefineDumpCommand())
	rootCmd.AddCommand(DefineApplyCommand())
	rootCmd.AddCommand(DefineVerifyCommand())
	rootCmd.AddCommand(DefineTypesCommand())

	return rootCmd.Execute()
}
