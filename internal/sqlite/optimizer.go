package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/coldcase/internal/errors"
)

// Optimize runs PRAGMA optimize, which SQLite recommends before closing a connection.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) Optimize(ctx context.Context) error {
	start := time.Now()
	if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return errors.Wrap(err, "optimize database")
	}
	db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database", slog.Duration("duration", time.Since(start)))
	return nil
}
