package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// ReconnectPlugin watches statement errors and, when one looks like a lost
// connection, pings the pool with backoff so the next statement gets a
// healthy connection.
type ReconnectPlugin struct {
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	reconnects atomic.Int64
	inFlight   atomic.Bool
}

// NewReconnectPlugin creates a new reconnect plugin.
func NewReconnectPlugin(logger *slog.Logger) *ReconnectPlugin {
	return &ReconnectPlugin{
		logger:     logger,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// Name returns the plugin name.
func (p *ReconnectPlugin) Name() string {
	return "reconnect_plugin"
}

// Initialize hooks the plugin after every statement kind.
func (p *ReconnectPlugin) Initialize(db *gorm.DB) error {
	callbacks := db.Callback()

	if err := callbacks.Query().After("gorm:query").Register("reconnect:after_query", p.afterStatement); err != nil {
		return err
	}
	if err := callbacks.Create().After("gorm:create").Register("reconnect:after_create", p.afterStatement); err != nil {
		return err
	}
	if err := callbacks.Update().After("gorm:update").Register("reconnect:after_update", p.afterStatement); err != nil {
		return err
	}
	if err := callbacks.Delete().After("gorm:delete").Register("reconnect:after_delete", p.afterStatement); err != nil {
		return err
	}
	if err := callbacks.Row().After("gorm:row").Register("reconnect:after_row", p.afterStatement); err != nil {
		return err
	}
	return callbacks.Raw().After("gorm:raw").Register("reconnect:after_raw", p.afterStatement)
}

func (p *ReconnectPlugin) afterStatement(db *gorm.DB) {
	if !IsConnectionError(db.Error) {
		return
	}

	// One recovery at a time; concurrent failures share it.
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	p.logger.Warn("database connection lost, attempting to reconnect",
		slog.String("error", db.Error.Error()),
	)

	if p.restore(db.Statement.Context, sqlDB) {
		p.logger.Info("database reconnection successful",
			slog.Int64("total_reconnects", p.reconnects.Load()),
		)
	} else {
		p.logger.Error("database reconnection failed after retries",
			slog.Int("max_retries", p.maxRetries),
		)
	}
}

func (p *ReconnectPlugin) restore(ctx context.Context, sqlDB *sql.DB) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.retryDelay * time.Duration(attempt)):
		}

		if err := sqlDB.PingContext(ctx); err == nil {
			p.reconnects.Add(1)
			return true
		}

		p.logger.Warn("reconnection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", p.maxRetries),
		)
	}

	return false
}

// Reconnects returns the number of successful recoveries.
func (p *ReconnectPlugin) Reconnects() int64 {
	return p.reconnects.Load()
}

var connectionErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"connection timed out",
	"bad connection",
	"invalid connection",
	"closed network connection",
	"connection lost",
	"server closed",
	"unexpected eof",
}

// IsConnectionError reports whether err looks like a dropped connection
// rather than a statement failure.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	message := strings.ToLower(err.Error())
	for _, pattern := range connectionErrorPatterns {
		if strings.Contains(message, pattern) {
			return true
		}
	}

	return false
}
