package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/kettlegraph/internal/checksum"
	"github.com/vvka-141/kettlegraph/internal/files/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Summarize every .ktr and .kjb file under a directory",
	Long: `Walks <dir> recursively and parses every transformation and job. A file that
fails to load is reported and the scan continues; the command exits non-zero
when any file failed.`,
	Args: RequireDirectory,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, nil)
	if err != nil {
		return err
	}

	result, err := scanner.NewScanner(checksum.New(), s.inspector).ScanDirectory(args[0])
	if err != nil {
		return err
	}
	if err := s.renderer.Scan(result); err != nil {
		return err
	}

	failed := result.Failed()
	if failed == 0 {
		return nil
	}
	for _, f := range result.Files {
		if f.Err != nil {
			return fmt.Errorf("%d of %d pipeline files failed to load, first %s: %w", failed, len(result.Files), f.Path, f.Err)
		}
	}
	return nil
}
