package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/kettlegraph/internal/catalog"
	"github.com/vvka-141/kettlegraph/internal/checksum"
	"github.com/vvka-141/kettlegraph/internal/config"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

var publishFlags struct {
	connection string
	schema     string
	auth       string
	awsRegion  string
	instance   string
}

var publishCmd = &cobra.Command{
	Use:   "publish <file>...",
	Short: "Write pipeline models to the PostgreSQL lineage catalog",
	Long: `Parses each file and replaces its rows in the lineage catalog: one document
row plus its steps, hops and connections, written in a single transaction per
file. Tables are created on first use.

The connection string comes from --connection, KETTLEGRAPH_CATALOG_URL or
catalog.connection in kettlegraph.yaml.

Cloud-hosted catalogs can authenticate without a password:
  --auth aws-iam   RDS IAM token from the default AWS credential chain (needs --aws-region)
  --auth azure     Entra ID token from DefaultAzureCredential
  --auth google    Cloud SQL connector with IAM authentication (needs --instance)

Examples:
  kettlegraph publish etl/*.ktr --connection postgresql://etl@localhost/lineage
  kettlegraph publish nightly.kjb --schema lineage
  kettlegraph publish etl/*.ktr --auth aws-iam --aws-region eu-west-1 \
      --connection postgresql://etl@lineage.cluster.eu-west-1.rds.amazonaws.com/lineage`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishFlags.connection, "connection", "", "Catalog connection string (postgresql://...)")
	publishCmd.Flags().StringVar(&publishFlags.schema, "schema", "", "Catalog schema (default \"kettle\")")
	publishCmd.Flags().StringVar(&publishFlags.auth, "auth", "", "Catalog authentication: standard, aws-iam, azure or google")
	publishCmd.Flags().StringVar(&publishFlags.awsRegion, "aws-region", "", "AWS region for aws-iam auth (default $AWS_REGION)")
	publishCmd.Flags().StringVar(&publishFlags.instance, "instance", "", "Cloud SQL instance (project:region:instance) for google auth")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, func(cfg *config.ProjectConfig) {
		if publishFlags.connection != "" {
			cfg.Catalog.Connection = publishFlags.connection
		}
		if publishFlags.schema != "" {
			cfg.Catalog.Schema = publishFlags.schema
		}
		if publishFlags.auth != "" {
			cfg.Catalog.Auth = publishFlags.auth
		}
		if publishFlags.awsRegion != "" {
			cfg.Catalog.AWSRegion = publishFlags.awsRegion
		}
		if publishFlags.instance != "" {
			cfg.Catalog.Instance = publishFlags.instance
		}
	})
	if err != nil {
		return err
	}
	if s.cfg.Catalog.Connection == "" {
		return fmt.Errorf("no catalog connection: use --connection, %s or catalog.connection in %s: %w",
			config.EnvCatalogURL, config.ConfigFileName, kettle.ErrInvalidConfig)
	}

	// Parse everything before connecting so a bad file fails fast.
	type prepared struct {
		pipeline *kettle.Pipeline
		checksum string
	}
	calc := checksum.New()
	var batch []prepared
	for _, arg := range args {
		p, raw, err := s.loadPipelineWithContent(arg)
		if err != nil {
			return err
		}
		batch = append(batch, prepared{pipeline: p, checksum: calc.CalculateNormalized(raw)})
	}

	method, err := catalog.ParseAuthMethod(s.cfg.Catalog.Auth)
	if err != nil {
		return err
	}
	auth := catalog.Auth{Method: method, AWSRegion: s.cfg.Catalog.AWSRegion, Instance: s.cfg.Catalog.Instance}

	ctx := cmd.Context()
	pool, err := catalog.Connect(ctx, s.cfg.Catalog.Connection, auth, s.logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	publisher := catalog.NewPublisher(pool, s.cfg.Catalog.Schema, s.logger)
	var errs []error
	for _, item := range batch {
		if err := publisher.Publish(ctx, item.pipeline, item.checksum); err != nil {
			s.logger.Error("%s: %v", displayName(item.pipeline), err)
			errs = append(errs, err)
			continue
		}
		s.logger.Info("Published %s %q to %s", item.pipeline.Kind, item.pipeline.Name, s.cfg.Catalog.Schema)
	}
	return errors.Join(errs...)
}

func displayName(p *kettle.Pipeline) string {
	if p.Source != "" {
		return p.Source
	}
	return p.Name
}
