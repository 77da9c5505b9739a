package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kettlegraph",
	Short: "Inspect Pentaho Kettle transformations and jobs",
	Long: `kettlegraph reads Kettle transformation (.ktr) and job (.kjb) files into a
normalized model of steps, hops and connections, and answers questions about
them: which hops are disabled, which carry error rows, and every path a row
can take between two steps.

A file argument of "-" reads the document from standard input.

Configuration precedence: flags > environment (including --env-file) >
kettlegraph.yaml > defaults.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Pipeline file not found
  12 - Validation failed (extension, root tag, flag value, missing attribute)
  13 - Pipeline file is not well-formed XML
  14 - Lineage catalog could not be written`,
	SilenceUsage: true,
}

// rootFlags holds the persistent flag values shared by every command.
var rootFlags struct {
	verbose   bool
	output    string
	configDir string
	envFile   string
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(rootCmd.OutOrStdout())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	pf.StringVarP(&rootFlags.output, "output", "o", "", "Output format: text, json or yaml")
	pf.StringVar(&rootFlags.configDir, "config", "", "Directory containing kettlegraph.yaml (default: current directory)")
	pf.StringVar(&rootFlags.envFile, "env-file", "", "Load environment variables from this file before reading configuration")
}
