// Package retry retries operations that fail with transient PostgreSQL or
// network errors, waiting with exponential backoff between attempts.
//
//	executor := retry.NewExecutor(retry.IsTransient, retry.NewBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Executor is safe for concurrent use; WithOnRetry returns a copy.
package retry
