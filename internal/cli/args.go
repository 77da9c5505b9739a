package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequirePipelineFile validates that exactly one <file> argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequirePipelineFile(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <file>

Usage: %s

Example:
  %s load_sales.ktr
  cat nightly.kjb | %s -`, cmd.UseLine(), cmd.CommandPath(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireStepAttribute validates the <file> <step> <attribute> triple.
func RequireStepAttribute(cmd *cobra.Command, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf(`missing required argument: <file> <step> <attribute>

Usage: %s

Example:
  %s load_sales.ktr "Text file input" format`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 3 {
		return fmt.Errorf("accepts 3 arg(s), received %d", len(args))
	}
	return nil
}

// RequirePathEndpoints accepts a file alone, which asks for the endpoints
// interactively, or a file with both start and end steps.
func RequirePathEndpoints(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return fmt.Errorf(`missing required argument: <file>

Usage: %s

Example:
  %s load_sales.ktr "Read orders" "Write sales"`, cmd.UseLine(), cmd.CommandPath())
	case 1, 3:
		return nil
	case 2:
		return fmt.Errorf(`missing required argument: <end>

Usage: %s

Give both <start> and <end>, or neither to pick them interactively.`, cmd.UseLine())
	default:
		return fmt.Errorf("accepts at most 3 arg(s), received %d", len(args))
	}
}

// RequireDirectory validates that exactly one <dir> argument is provided.
func RequireDirectory(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <dir>

Usage: %s

Example:
  %s ./etl`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
