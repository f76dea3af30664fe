// Package migrations embeds the SQL schema for each supported database.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Dialects with a migration directory.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Up lists the dialect's up migrations in apply order.
func Up(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(FS, dialect)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dialect, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, path.Join(dialect, e.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs the dialect's up migrations against db in file order. Every
// migration is idempotent.
func Apply(ctx context.Context, db *sql.DB, dialect string) error {
	names, err := Up(dialect)
	if err != nil {
		return err
	}
	for _, name := range names {
		body, err := FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
