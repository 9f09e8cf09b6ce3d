package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func DefineTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types <label>",
		Short: "List a label driver's partition-type catalog",
		Long: `The 'types' command displays a table of every partition type a label
driver ("dos", "gpt", or "bsd") recognizes, alongside the shortcut aliases
its script 'type=' field accepts.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunTypes,
	}
	return cmd
}

func RunTypes(cmd *cobra.Command, args []string) error {
	reg := typeRegistryFor(args[0])

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tSHORTCUTS")
	for _, e := range reg.All() {
		code := e.TypeStr
		if code == "" {
			code = fmt.Sprintf("0x%02x", e.Code)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", code, e.Name, strings.Join(e.Shortcuts, ","))
	}
	return w.Flush()
}
