package cmd

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/ostafen/partedit/internal/perr"
	"github.com/ostafen/partedit/internal/script"
	"github.com/spf13/cobra"
)

func DefineApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <device> <script-file>",
		Short: "Apply a dump script to a device",
		Long: `The 'apply' command parses a dump script (see 'dump'), creates the label
named by its 'label:' header fresh, and adds every partition the script
describes, in order. The first partition that cannot be added aborts the
whole operation and leaves the device untouched.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE:         RunApply,
	}
	return cmd
}

func RunApply(cmd *cobra.Command, args []string) error {
	devicePath, scriptPath := args[0], args[1]

	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return perr.Wrap(perr.IOError, err, "reading %s", scriptPath)
	}

	labelName := detectScriptLabel(data)
	if labelName == "" {
		return perr.New(perr.InvalidArgument, "%s has no 'label:' header", scriptPath)
	}

	dev, flags, cleanup, err := openDevice(cmd, devicePath)
	if err != nil {
		return err
	}
	defer cleanup()
	if flags.readOnly {
		return perr.New(perr.BusyInUse, "cannot apply a script in a read-only session")
	}

	reg := typeRegistryFor(labelName)
	s, err := script.Parse(bytes.NewReader(data), reg, dev.LogicalSectorSize)
	if err != nil {
		return err
	}

	ctx := newContext(dev, false)
	drv, err := ctx.Registry().New(labelName)
	if err != nil {
		return err
	}
	ctx.Driver = drv

	if err := script.ApplyToContext(ctx, s); err != nil {
		return err
	}
	if err := drv.Write(ctx); err != nil {
		return err
	}

	log.Infof("applied %s to %s (%d partitions)", scriptPath, devicePath, len(s.Partitions))
	return nil
}

// detectScriptLabel pre-scans a script's header block for its 'label:'
// value, needed before Parse can be called since Parse already requires
// the target label's type registry to resolve `type=` fields.
func detectScriptLabel(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.ToLower(strings.TrimSpace(key)) == "label" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
