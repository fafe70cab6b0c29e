package commands

import (
	"errors"

	"github.com/panyam/coredsl/loader"
	"github.com/spf13/cobra"
)

var validateOpts loader.Options

var validateCmd = &cobra.Command{
	Use:   "validate <file...>",
	Short: "Parses, links and checks CoreDSL files",
	Long: `The validate command loads each file with everything it imports, resolves
every reference and checks attribute usage.  Type and constant checks are
optional.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !newLoader().LoadFilesAndValidate(validateOpts, args...) {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateOpts.CheckTypes, "check-types", false, "Report expressions with incompatible operand types")
	validateCmd.Flags().BoolVar(&validateOpts.CheckConstants, "check-constants", false, "Report array sizes and bit widths that are not constant in a core")
}
