package cmd

import (
	"fmt"
	"os"

	"github.com/ostafen/partedit/internal/perr"
	"github.com/spf13/cobra"
)

func DefineVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "verify <device>",
		Short:        "Check a device's label for invariant violations",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunVerify,
	}
	return cmd
}

func RunVerify(cmd *cobra.Command, args []string) error {
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

	n, err := drv.Verify(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(os.Stdout, "%s: %s label OK\n", args[0], drv.Name())
		return nil
	}
	return perr.New(perr.InvalidOnDisk, "%s: %d problem(s) found in %s label", args[0], n, drv.Name())
}
