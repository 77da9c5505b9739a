package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/kettlegraph/internal/config"
	"github.com/vvka-141/kettlegraph/internal/tui"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

var pathsFlags struct {
	max int
}

var pathsCmd = &cobra.Command{
	Use:   "paths <file> [<start> <end>]",
	Short: "Enumerate every path between two steps",
	Long: `Walks the graph of enabled hops depth first and prints every path from
<start> to <end> that visits no step twice. Paths are produced lazily, so
--max stops the walk early on large graphs.

When <start> and <end> are omitted on an interactive terminal, both are
chosen from a filterable step list.

Examples:
  kettlegraph paths load_sales.ktr "Read orders" "Write sales"
  kettlegraph paths load_sales.ktr "Read orders" "Write sales" --max 10 -o json
  kettlegraph paths nightly.kjb`,
	Args: RequirePathEndpoints,
	RunE: runPaths,
}

func init() {
	pathsCmd.Flags().IntVar(&pathsFlags.max, "max", 0, "Stop after this many paths (0 = unlimited)")
	rootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, func(cfg *config.ProjectConfig) {
		if cmd.Flags().Changed("max") {
			cfg.MaxPaths = pathsFlags.max
		}
	})
	if err != nil {
		return err
	}

	p, err := s.loadPipeline(args[0])
	if err != nil {
		return err
	}

	var start, end string
	if len(args) == 3 {
		start, end = args[1], args[2]
	} else {
		start, end, err = pickEndpoints(cmd, p)
		if err != nil {
			return err
		}
	}

	g := s.inspector.Graph(p)
	n, err := s.renderer.Paths(g.AllPaths(start, end), s.cfg.MaxPaths)
	if err != nil {
		return err
	}
	s.logger.Verbose("%d path(s) from %q to %q", n, start, end)
	return nil
}

// pickEndpoints asks for start and end steps on an interactive terminal.
func pickEndpoints(cmd *cobra.Command, p *kettle.Pipeline) (string, string, error) {
	if !tui.IsInteractive() {
		return "", "", fmt.Errorf(`missing required argument: <start> <end>

Usage: %s

Endpoints can only be picked interactively on a terminal.`, cmd.UseLine())
	}

	options := tui.StepOptions(p.Steps())
	start, err := tui.PickStep("Start step", options)
	if err != nil {
		return "", "", err
	}
	end, err := tui.PickStep(fmt.Sprintf("End step (paths from %q)", start), options)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}
