package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	searchPaths []string
	maxDepth    int
	logLevel    string
	envFile     string
)

var rootCmd = &cobra.Command{
	Use:   "coredsl",
	Short: "Semantic checks and constant evaluation for CoreDSL descriptions",
	Long: `coredsl loads CoreDSL instruction set descriptions with their imports,
resolves every name, infers static types and folds compile-time constants.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setupLogging(os.Stderr, cfg.LogLevel)
		config = cfg
		return nil
	},
}

// Execute runs the command tree.  Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&searchPaths, "include", "I", nil, "Additional directories searched for imports (default: COREDSL_PATH)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Maximum import nesting, 0 for no limit (default: COREDSL_MAX_IMPORT_DEPTH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "One of debug, info, warn, error (default: COREDSL_LOG_LEVEL or warn)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file loaded before reading settings")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
