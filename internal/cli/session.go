package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/kettlegraph/internal/config"
	"github.com/vvka-141/kettlegraph/internal/files/loader"
	"github.com/vvka-141/kettlegraph/internal/logging"
	"github.com/vvka-141/kettlegraph/internal/render"
	"github.com/vvka-141/kettlegraph/internal/services"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// session is the resolved configuration and services of one command run.
type session struct {
	cfg       *config.ProjectConfig
	logger    kettle.Logger
	inspector *services.Inspector
	renderer  *render.Renderer
	stdin     io.Reader
}

// newSession resolves configuration with the precedence
// flags > environment > kettlegraph.yaml > defaults. override applies the
// command's own flags before validation and may be nil.
func newSession(cmd *cobra.Command, override func(cfg *config.ProjectConfig)) (*session, error) {
	if err := loadEnvFile(rootFlags.envFile); err != nil {
		return nil, err
	}

	dir := rootFlags.configDir
	if dir == "" {
		dir = "."
	}
	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if rootFlags.output != "" {
		cfg.Output = rootFlags.output
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), rootFlags.verbose)
	return &session{
		cfg:       cfg,
		logger:    logger,
		inspector: services.NewInspector(loader.NewLoader(), logger),
		renderer:  render.New(cmd.OutOrStdout(), format),
		stdin:     cmd.InOrStdin(),
	}, nil
}

// loadEnvFile loads an explicit env file, or .env from the working
// directory when one exists. Variables already set are not overridden.
func loadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %v: %w", path, err, kettle.ErrInvalidConfig)
	}
	return nil
}

// loadPipeline parses a file argument, reading raw XML from stdin for "-".
func (s *session) loadPipeline(arg string) (*kettle.Pipeline, error) {
	if arg == kettle.StdinSource {
		p, _, err := s.loadPipelineWithContent(arg)
		return p, err
	}
	return s.inspector.ParseFile(arg)
}

// loadPipelineWithContent is loadPipeline that also returns the raw document.
// Standard input is read once.
func (s *session) loadPipelineWithContent(arg string) (*kettle.Pipeline, []byte, error) {
	if arg == kettle.StdinSource {
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		p, err := s.inspector.ParseText(string(data))
		if err != nil {
			return nil, nil, err
		}
		return p, data, nil
	}

	p, err := s.inspector.ParseFile(arg)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return p, data, nil
}
