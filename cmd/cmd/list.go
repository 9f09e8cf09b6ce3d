package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func DefineListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list <device>",
		Short:        "List a device's partition table",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunList,
	}
	return cmd
}

func RunList(cmd *cobra.Command, args []string) error {
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

	partitions := tablePartitions(ctx)
	free, err := drv.ListFreespace(ctx)
	if err != nil {
		return err
	}
	partitions = append(partitions, free...)

	color, _ := cmd.Flags().GetString("color")
	return renderTable(os.Stdout, ctx, partitions, dev.LogicalSectorSize, color)
}
