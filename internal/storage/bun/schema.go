package bunrepo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDatabase opens the sqlite database behind the DSN, creating the parent
// directory and the schema as needed.
func OpenDatabase(ctx context.Context, driver, dsn string, lgr logger.Logger) (*bun.DB, error) {
	if driver != "" && driver != "sqlite" {
		return nil, fmt.Errorf("persistence: unsupported driver %s", driver)
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("persistence: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := sqldb.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil && lgr != nil {
		lgr.Warn("persistence: enable sqlite foreign keys", logger.Field{Key: "error", Value: err})
	}

	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSQLiteDir(dsn string) error {
	if !strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*domain.User)(nil),
		(*domain.ShoppingList)(nil),
		(*domain.ListMember)(nil),
		(*domain.Category)(nil),
		(*domain.ListItem)(nil),
		(*domain.ItemCategoryMemory)(nil),
		(*domain.ApiKey)(nil),
		(*domain.InviteCode)(nil),
		(*domain.PushSubscription)(nil),
		(*domain.NotificationPreference)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("persistence: create table for %T: %w", model, err)
		}
	}
	return nil
}
