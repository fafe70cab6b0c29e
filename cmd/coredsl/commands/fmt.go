package commands

import (
	"bytes"
	"fmt"

	"github.com/panyam/coredsl/parser"
	"github.com/spf13/cobra"
)

var (
	fmtWrite bool
	fmtCheck bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file...>",
	Short: "Reprints CoreDSL files in canonical form",
	Long: `Parses each file and prints it back in canonical layout.  Imports are not
followed.  With --write the files are rewritten in place; with --check the
command fails if any file would change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := newFileSystem()
		changed := 0
		for _, path := range args {
			src, err := fs.ReadFile(path)
			if err != nil {
				return err
			}
			content, err := parser.Parse(bytes.NewReader(src), path)
			if err != nil {
				return err
			}
			formatted := []byte(content.String())
			switch {
			case fmtCheck:
				if !bytes.Equal(src, formatted) {
					changed++
					fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			case fmtWrite:
				if !bytes.Equal(src, formatted) {
					if err := fs.WriteFile(path, formatted); err != nil {
						return err
					}
				}
			default:
				cmd.OutOrStdout().Write(formatted)
			}
		}
		if changed > 0 {
			return fmt.Errorf("%d file(s) not formatted", changed)
		}
		return nil
	},
}

func init() {
	AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write the result back to the source file")
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "List files whose formatting differs and fail if there are any")
}
