package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/kettlegraph/internal/retry"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// Connection pool configuration constants
const (
	DefaultMaxConns        = 4
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = 5 * time.Minute

	// DefaultConnectRetries is the number of retries after the first failed
	// connection attempt.
	DefaultConnectRetries = 3
)

func configurePool(poolConfig *pgxpool.Config, logger kettle.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("catalog: %s", notice.Message)
	}
}

// Pool is a catalog connection pool. Close releases the pool and any
// resources its authentication method holds.
type Pool struct {
	*pgxpool.Pool
	release func()
}

// Close closes the pool.
func (p *Pool) Close() {
	p.Pool.Close()
	p.release()
}

// Connect opens a connection pool to the catalog database and pings it.
// Transient failures are retried with exponential backoff.
func Connect(ctx context.Context, connString string, a Auth, logger kettle.Logger) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse catalog connection string: %w: %w", kettle.ErrInvalidConfig, err)
	}
	configurePool(poolConfig, logger)

	release, err := configureAuth(ctx, poolConfig, a, logger)
	if err != nil {
		return nil, err
	}

	executor := retry.NewExecutor(retry.IsTransient, retry.NewBackoff(DefaultConnectRetries)).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("catalog connection attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
		})

	var pool *pgxpool.Pool
	err = executor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		release()
		cc := poolConfig.ConnConfig
		return nil, wrapConnectionError(err, cc.Host, cc.Port, cc.Database)
	}

	logger.Verbose("connected to catalog %s:%d/%s", poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port, poolConfig.ConnConfig.Database)
	return &Pool{Pool: pool, release: release}, nil
}

// wrapConnectionError attaches a hint for the common connection failures
// and marks the error as a catalog failure.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused"):
		hint = fmt.Sprintf("is PostgreSQL running? (check: pg_isready -h %s -p %d)", host, port)
	case strings.Contains(errStr, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q; check the catalog connection string", host)
	case strings.Contains(errStr, "password authentication failed"):
		hint = "check the user and password in the connection string, $PGPASSWORD or ~/.pgpass"
	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf("create the database first: createdb %s", database)
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = "the server did not answer in time; check the host, port and firewall"
	}

	if hint == "" {
		return fmt.Errorf("connect to catalog at %s: %w: %w", addr, kettle.ErrCatalog, err)
	}
	return fmt.Errorf("connect to catalog at %s: %w: %w\n\nHint: %s", addr, kettle.ErrCatalog, err, hint)
}
