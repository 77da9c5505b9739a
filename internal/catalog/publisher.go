package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// DefaultSchema is used when no schema is configured.
const DefaultSchema = kettle.DefaultCatalogSchema

// DB begins catalog transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Publisher writes pipeline models to the catalog.
type Publisher struct {
	db     DB
	schema string
	logger kettle.Logger
}

// NewPublisher creates a publisher writing into schema.
// Panics if db or logger is nil.
func NewPublisher(db DB, schema string, logger kettle.Logger) *Publisher {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if schema == "" {
		schema = DefaultSchema
	}
	return &Publisher{db: db, schema: schema, logger: logger}
}

func (p *Publisher) table(name string) string {
	return pgx.Identifier{p.schema, name}.Sanitize()
}

// schemaStatements returns the idempotent DDL for the catalog tables.
func (p *Publisher) schemaStatements() []string {
	documents := p.table("documents")
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pgx.Identifier{p.schema}.Sanitize()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id           uuid PRIMARY KEY,
	kind         text NOT NULL,
	name         text NOT NULL,
	source       text NOT NULL,
	checksum     text NOT NULL,
	published_at timestamptz NOT NULL DEFAULT now()
)`, documents),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	document_id uuid NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
	id          uuid NOT NULL,
	ordinal     integer NOT NULL,
	name        text NOT NULL,
	type        text NOT NULL,
	PRIMARY KEY (document_id, name)
)`, p.table("steps"), documents),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	document_id uuid NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
	ordinal     integer NOT NULL,
	from_step   text NOT NULL,
	to_step     text NOT NULL,
	enabled     boolean NOT NULL,
	error_route boolean NOT NULL,
	PRIMARY KEY (document_id, ordinal)
)`, p.table("hops"), documents),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	document_id   uuid NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
	ordinal       integer NOT NULL,
	name          text NOT NULL,
	server        text NOT NULL,
	type          text NOT NULL,
	access        text NOT NULL,
	database_name text NOT NULL,
	username      text NOT NULL,
	PRIMARY KEY (document_id, ordinal)
)`, p.table("connections"), documents),
	}
}

// Publish replaces the catalog rows of the pipeline in a single transaction.
// checksum is stored alongside the document so callers can detect changes.
func (p *Publisher) Publish(ctx context.Context, pipeline *kettle.Pipeline, checksum string) error {
	if pipeline == nil {
		return fmt.Errorf("publish: nil pipeline: %w", kettle.ErrValidation)
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin catalog transaction: %w: %w", kettle.ErrCatalog, err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			p.logger.Error("catalog rollback failed: %v", rbErr)
		}
	}()

	for _, stmt := range p.schemaStatements() {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure catalog schema %q: %w: %w", p.schema, kettle.ErrCatalog, err)
		}
	}

	id := pipeline.ID().String()
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, p.table("documents")), id); err != nil {
		return fmt.Errorf("remove previous catalog rows for %q: %w: %w", pipeline.Name, kettle.ErrCatalog, err)
	}

	batch := p.buildBatch(pipeline, checksum)
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert catalog row %d for %q: %w: %w", i, pipeline.Name, kettle.ErrCatalog, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("complete catalog batch for %q: %w: %w", pipeline.Name, kettle.ErrCatalog, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit catalog transaction: %w: %w", kettle.ErrCatalog, err)
	}

	p.logger.Verbose("published %s %q (%d steps, %d hops, %d connections)",
		pipeline.Kind, pipeline.Name, pipeline.StepCount(), len(pipeline.Hops), len(pipeline.Connections))
	return nil
}

// buildBatch queues the document row first; child rows reference it.
func (p *Publisher) buildBatch(pipeline *kettle.Pipeline, checksum string) *pgx.Batch {
	id := pipeline.ID().String()
	batch := &pgx.Batch{}

	batch.Queue(fmt.Sprintf(`INSERT INTO %s (id, kind, name, source, checksum) VALUES ($1, $2, $3, $4, $5)`, p.table("documents")),
		id, pipeline.Kind.String(), pipeline.Name, pipeline.Source, checksum)

	stepSQL := fmt.Sprintf(`INSERT INTO %s (document_id, id, ordinal, name, type) VALUES ($1, $2, $3, $4, $5)`, p.table("steps"))
	for i, s := range pipeline.Steps() {
		batch.Queue(stepSQL, id, pipeline.StepID(s.Name()).String(), i, s.Name(), s.Type())
	}

	hopSQL := fmt.Sprintf(`INSERT INTO %s (document_id, ordinal, from_step, to_step, enabled, error_route) VALUES ($1, $2, $3, $4, $5, $6)`, p.table("hops"))
	for i, h := range pipeline.Hops {
		batch.Queue(hopSQL, id, i, h.From, h.To, h.Enabled, h.IsErrorRoute)
	}

	connSQL := fmt.Sprintf(`INSERT INTO %s (document_id, ordinal, name, server, type, access, database_name, username) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, p.table("connections"))
	for i, c := range pipeline.Connections {
		batch.Queue(connSQL, id, i, c.Name, c.Server, c.Type, c.Access, c.Database, c.Username)
	}

	return batch
}
