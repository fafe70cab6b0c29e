package commands

import (
	"fmt"

	"github.com/panyam/coredsl/loader"
	"github.com/spf13/cobra"
)

var evalDef string

var evalCmd = &cobra.Command{
	Use:   "eval <file> [expression...]",
	Short: "Folds constant expressions in the context of a core or instruction set",
	Long: `Evaluates each expression against the state of a definition of the file.
Without expressions the effective value of every state variable is shown.
Values that are not compile-time constants print as <not constant>, state
that is never initialized or assigned prints as <unset>.`,
	Example: `  coredsl eval rv32.core_desc --def RV32I "XLEN * 2"
  coredsl eval rv32.core_desc`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args[0], loader.Options{}, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if evalDef != "" {
			if err := s.selectDefinition(evalDef); err != nil {
				return err
			}
		}
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			for _, entry := range s.state() {
				if entry.Effective == nil {
					fmt.Fprintf(out, "%s.%s = <unset>\n", entry.Owner, entry.Declarator.Name)
					continue
				}
				fmt.Fprintf(out, "%s.%s = %s\n", entry.Owner, entry.Declarator.Name, entry.Value)
			}
			return nil
		}
		for _, expr := range args[1:] {
			v, err := s.eval(expr)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s = %s\n", expr, v)
		}
		return nil
	},
}

func init() {
	AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalDef, "def", "d", "", "Core or instruction set to evaluate in (default: the last core of the file)")
}
