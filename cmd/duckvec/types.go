package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/duckvec/types"
)

func newTypesCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "types TYPE...",
		Short: "Parse SQL type names and show their storage layout",
		Example: `  duckvec types INTEGER "DECIMAL(18,3)" "MAP(VARCHAR, INTEGER[])"
  duckvec types --dump "STRUCT(a INTEGER, b VARCHAR)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			bold := color.New(color.Bold)
			for _, arg := range args {
				lt, err := types.Parse(arg)
				if err != nil {
					return err
				}
				bold.Fprintln(out, lt.String())
				printType(cmd, lt, 1)
				if dump {
					spew.Fdump(out, lt)
				}
				_ = lt.Release()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the resolved type tree")
	return cmd
}

func printType(cmd *cobra.Command, lt *types.LogicalType, depth int) {
	out := cmd.OutOrStdout()
	indent := ""
	for range depth {
		indent += "  "
	}
	fmt.Fprintf(out, "%sid: %d, storage: %s, slot width: %d\n", indent, lt.ID(), lt.Storage(), lt.SlotWidth())
	switch lt.ID() {
	case types.TypeDecimal:
		fmt.Fprintf(out, "%swidth: %d, scale: %d\n", indent, lt.Width(), lt.Scale())
	case types.TypeEnum:
		fmt.Fprintf(out, "%sdictionary: %d entries\n", indent, len(lt.Dictionary()))
	case types.TypeArray:
		fmt.Fprintf(out, "%ssize: %d\n", indent, lt.Size())
	}
	if c := lt.Child(); c != nil {
		fmt.Fprintf(out, "%schild %s\n", indent, c)
		printType(cmd, c, depth+1)
	}
	for _, f := range lt.Fields() {
		fmt.Fprintf(out, "%sfield %s %s\n", indent, f.Name, f.Type)
		printType(cmd, f.Type, depth+1)
	}
}
