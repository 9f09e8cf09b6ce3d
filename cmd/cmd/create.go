package cmd

import (
	"fmt"

	"github.com/ostafen/partedit/internal/ask"
	"github.com/ostafen/partedit/internal/collision"
	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/pkg/pbar"
	"github.com/spf13/cobra"
)

func DefineCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <device> <label>",
		Short: "Create a fresh label on a device",
		Long: `The 'create' command seeds a blank MBR ("dos"), GPT ("gpt"), or BSD
disklabel ("bsd") on device and writes it immediately, overwriting whatever
label (or filesystem) the device previously carried.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunCreate,
	}
	return cmd
}

func RunCreate(cmd *cobra.Command, args []string) error {
	devicePath, labelName := args[0], args[1]

	dev, flags, cleanup, err := openDevice(cmd, devicePath)
	if err != nil {
		return err
	}
	defer cleanup()
	if flags.readOnly {
		return perr.New(perr.BusyInUse, "cannot create a label in a read-only session")
	}

	ctx := newContext(dev, false)

	name, used, err := collision.Probe(dev, 0)
	if err != nil {
		return err
	}
	ctx.SetUsed(used, name)
	if used {
		req := ask.NewYesNo(fmt.Sprintf("%s already carries a recognized %s signature; overwrite it", devicePath, name))
		if err := ctx.Dispatch(req); err != nil {
			return err
		}
		if !req.YesNo() {
			return perr.New(perr.EscapeCancel, "create aborted: existing %s signature not confirmed", name)
		}
		ctx.MarkWipe(0, collision.SignatureSectors(dev.LogicalSectorSize)-1)
	}

	drv, err := ctx.Registry().New(labelName)
	if err != nil {
		return err
	}
	ctx.Driver = drv

	if err := drv.Create(ctx); err != nil {
		return err
	}

	if len(ctx.Wipes.Ranges()) > 0 {
		bar := pbar.NewProgressBarState(0)
		ctx.WipeProgress = func(written, total int64) {
			bar.TotalBytes = total
			bar.ProcessedBytes = written
			bar.Render(written == total)
		}
		defer func() {
			if ctx.WipeProgress != nil {
				bar.Finish()
			}
		}()
	}
	if err := drv.Write(ctx); err != nil {
		return err
	}

	log.Infof("created %s label on %s", labelName, devicePath)
	return nil
}
