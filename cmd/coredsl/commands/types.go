package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/panyam/coredsl/loader"
	"github.com/spf13/cobra"
)

var typesDef string

var typesCmd = &cobra.Command{
	Use:   "types <file>",
	Short: "Shows the inferred types of state variables and instruction encodings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0], loader.Options{}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if typesDef != "" {
			if err := s.selectDefinition(typesDef); err != nil {
				return err
			}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "DEFINITION\tNAME\tTYPE\n")
		for _, entry := range s.state() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Owner, entry.Declarator.Name, entry.Type)
		}
		types := s.interp.Types()
		for _, instr := range s.def.Body().Instructions {
			if instr.Encoding != nil {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.def.EntityName(), instr.Name, types.TypeOf(instr.Encoding, s.def))
			}
		}
		return w.Flush()
	},
}

func init() {
	AddCommand(typesCmd)
	typesCmd.Flags().StringVarP(&typesDef, "def", "d", "", "Core or instruction set to type against (default: the last core of the file)")
}
