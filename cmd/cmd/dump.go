package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/script"
	utilos "github.com/ostafen/partedit/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineDumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dump <device>",
		Short:        "Dump a device's partition table as a script",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunDump,
	}
	cmd.Flags().StringP("output", "o", "", "write the script to this file instead of stdout")
	return cmd
}

func RunDump(cmd *cobra.Command, args []string) error {
	dev, _, cleanup, err := openDevice(cmd, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := newContext(dev, true)
	drv, err := ctx.Registry().Probe(ctx)
	if err != nil {
		return err
	}
	ctx.Driver = drv
	if err := drv.Read(ctx); err != nil {
		return err
	}

	text := script.Emit(script.FromContext(ctx), dev.LogicalSectorSize)

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Fprint(os.Stdout, text)
		return nil
	}

	if dir := filepath.Dir(output); dir != "." && dir != "" {
		if _, err := utilos.EnsureDir(dir, false); err != nil {
			return perr.Wrap(perr.IOError, err, "preparing directory for %s", output)
		}
	}
	return os.WriteFile(output, []byte(text), 0644)
}
