package commands

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/panyam/coredsl/decl"
	"github.com/spf13/cobra"
)

var (
	dumpDef   string
	dumpDepth int
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Dumps the linked syntax tree of a file or one of its definitions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newLoader().LoadFile(args[0])
		if err != nil {
			return err
		}
		var node decl.Node = result.Root.Content
		if dumpDef != "" {
			s := &session{result: result}
			if err := s.selectDefinition(dumpDef); err != nil {
				return err
			}
			node = s.def
		}
		cfg := spew.ConfigState{
			Indent:                  "  ",
			MaxDepth:                dumpDepth,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		cfg.Fdump(cmd.OutOrStdout(), node)
		return nil
	},
}

func init() {
	AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpDef, "def", "d", "", "Only dump the named core or instruction set")
	dumpCmd.Flags().IntVar(&dumpDepth, "depth", 8, "Maximum nesting depth, 0 for no limit")
}
