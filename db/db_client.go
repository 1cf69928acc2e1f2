package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseClient owns the pgx pool behind the postgres feedback store and
// retries the initial connection while the database comes up.
type DatabaseClient struct {
	pool       *pgxpool.Pool
	config     *pgxpool.Config
	mu         sync.RWMutex
	maxRetries int
	retryDelay time.Duration
}

// NewDatabaseClient wraps an existing pool. Without a config it cannot
// reconnect.
func NewDatabaseClient(pool *pgxpool.Pool) *DatabaseClient {
	return &DatabaseClient{
		pool:       pool,
		maxRetries: 5,
		retryDelay: time.Second,
	}
}

// NewDatabaseClientWithConfig returns a client that connects on Connect.
func NewDatabaseClientWithConfig(config *pgxpool.Config) *DatabaseClient {
	dc := NewDatabaseClient(nil)
	dc.config = config
	return dc
}

func (dc *DatabaseClient) SetMaxRetries(n int) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.maxRetries = n
}

func (dc *DatabaseClient) SetRetryDelay(d time.Duration) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.retryDelay = d
}

// GetPool returns the current pool, nil before a successful Connect.
func (dc *DatabaseClient) GetPool() *pgxpool.Pool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.pool
}

// Connect opens the pool and pings it, retrying up to maxRetries times.
func (dc *DatabaseClient) Connect(ctx context.Context) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.connectLocked(ctx)
}

// RefreshPool closes the current pool and connects again with the stored
// config.
func (dc *DatabaseClient) RefreshPool(ctx context.Context) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.pool != nil {
		dc.pool.Close()
		dc.pool = nil
	}
	return dc.connectLocked(ctx)
}

func (dc *DatabaseClient) connectLocked(ctx context.Context) error {
	if dc.config == nil {
		return fmt.Errorf("cannot connect: database configuration not available")
	}
	log := logger.GetLogger()

	var lastErr error
	for attempt := 1; attempt <= dc.maxRetries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, dc.config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				dc.pool = pool
				if attempt > 1 {
					log.Infow("Connected to database after retry", "attempt", attempt)
				}
				return nil
			}
			pool.Close()
		}
		lastErr = err

		log.Warnw("Database connection attempt failed",
			"attempt", attempt,
			"maxRetries", dc.maxRetries,
			"host", dc.config.ConnConfig.Host,
			"error", err)

		if attempt == dc.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database connection cancelled: %w", ctx.Err())
		case <-time.After(dc.retryDelay):
		}
	}
	return fmt.Errorf("failed to connect to database after %d attempts: %w", dc.maxRetries, lastErr)
}

// Close releases the pool.
func (dc *DatabaseClient) Close() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.pool != nil {
		dc.pool.Close()
		dc.pool = nil
	}
}
