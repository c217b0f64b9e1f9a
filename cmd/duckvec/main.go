// Command duckvec inspects logical types and storage encodings and loads
// JSON lines into an in-memory engine.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "duckvec",
		Short:         "duckvec - columnar vector inspection tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "duckvec v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
		},
	})
	root.AddCommand(newTypesCmd(), newVarintCmd(), newBitsCmd(), newLoadCmd())

	if err := root.Execute(); err != nil {
		exitWithErr(err)
	}
}

func exitWithErr(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
