package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize a transformation or job",
	Long: `Prints the document kind, name and identity, the number of steps and hops
(split into enabled, disabled and error routes) and every declared connection.

Examples:
  kettlegraph inspect load_sales.ktr
  kettlegraph inspect nightly.kjb -o json`,
	Args: RequirePipelineFile,
	RunE: runInspect,
}

var stepsFlags struct {
	enabled  bool
	disabled bool
}

var stepsCmd = &cobra.Command{
	Use:   "steps <file>",
	Short: "List the steps of a transformation or the entries of a job",
	Long: `Lists steps in order of first appearance. With --enabled or --disabled only
steps touched by at least one enabled or disabled hop are listed.`,
	Args: RequirePipelineFile,
	RunE: runSteps,
}

var hopsFlags struct {
	enabled  bool
	disabled bool
	errors   bool
}

var hopsCmd = &cobra.Command{
	Use:   "hops <file>",
	Short: "List hops in document order",
	Long: `Lists every hop as written, including hops that reference undeclared steps.
Disabled hops stay in the model but never enter the execution graph.`,
	Args: RequirePipelineFile,
	RunE: runHops,
}

var attrCmd = &cobra.Command{
	Use:   "attr <file> <step> <attribute>",
	Short: "Print one attribute of a step",
	Long: `Reads the text of a child element of the named step. Attributes other than
name and type are read from the document on first access.

Example:
  kettlegraph attr load_sales.ktr "Text file input" format`,
	Args: RequireStepAttribute,
	RunE: runAttr,
}

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Print the adjacency list of enabled hops",
	Args:  RequirePipelineFile,
	RunE:  runGraph,
}

func init() {
	stepsCmd.Flags().BoolVar(&stepsFlags.enabled, "enabled", false, "Only steps touched by an enabled hop")
	stepsCmd.Flags().BoolVar(&stepsFlags.disabled, "disabled", false, "Only steps touched by a disabled hop")
	stepsCmd.MarkFlagsMutuallyExclusive("enabled", "disabled")

	hopsCmd.Flags().BoolVar(&hopsFlags.enabled, "enabled", false, "Only enabled hops")
	hopsCmd.Flags().BoolVar(&hopsFlags.disabled, "disabled", false, "Only disabled hops")
	hopsCmd.Flags().BoolVar(&hopsFlags.errors, "errors", false, "Only hops carrying error rows")
	hopsCmd.MarkFlagsMutuallyExclusive("enabled", "disabled", "errors")

	rootCmd.AddCommand(inspectCmd, stepsCmd, hopsCmd, attrCmd, graphCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, p, err := sessionWithPipeline(cmd, args[0])
	if err != nil {
		return err
	}
	return s.renderer.Pipeline(p)
}

func runSteps(cmd *cobra.Command, args []string) error {
	s, p, err := sessionWithPipeline(cmd, args[0])
	if err != nil {
		return err
	}

	var steps []*kettle.Step
	switch {
	case stepsFlags.enabled:
		steps = p.EnabledSteps()
	case stepsFlags.disabled:
		steps = p.DisabledSteps()
	default:
		steps = p.Steps()
	}
	return s.renderer.Steps(p, steps)
}

func runHops(cmd *cobra.Command, args []string) error {
	s, p, err := sessionWithPipeline(cmd, args[0])
	if err != nil {
		return err
	}

	hops := p.Hops
	switch {
	case hopsFlags.enabled:
		hops = p.EnabledHops()
	case hopsFlags.disabled:
		hops = p.DisabledHops()
	case hopsFlags.errors:
		hops = p.ErrorHops()
	}
	return s.renderer.Hops(hops)
}

func runAttr(cmd *cobra.Command, args []string) error {
	s, p, err := sessionWithPipeline(cmd, args[0])
	if err != nil {
		return err
	}

	step, attribute := args[1], args[2]
	value, err := p.StepAttribute(step, attribute)
	if err != nil {
		return err
	}
	return s.renderer.Attribute(step, attribute, value)
}

func runGraph(cmd *cobra.Command, args []string) error {
	s, p, err := sessionWithPipeline(cmd, args[0])
	if err != nil {
		return err
	}
	return s.renderer.Graph(s.inspector.Graph(p))
}

func sessionWithPipeline(cmd *cobra.Command, arg string) (*session, *kettle.Pipeline, error) {
	s, err := newSession(cmd, nil)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.loadPipeline(arg)
	if err != nil {
		return nil, nil, err
	}
	return s, p, nil
}
