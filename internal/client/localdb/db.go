// Package localdb opens the client's SQLite database and applies the
// embedded migrations.
package localdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/langcrowd/internal/client/migrations"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/kv"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/mirror"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Repositories bundles the repositories backed by one database handle.
type Repositories struct {
	DB     *sql.DB
	KV     kv.Repository
	Mirror mirror.Repository
}

// Close releases the underlying database.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// RunMigrations applies pending migrations. The provider stays silent so
// nothing is printed over the interactive prompt.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("init goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens dsn, migrates it and wires the repositories.
// SQLite serialises writers, so the pool is limited to one connection;
// this also keeps ":memory:" databases shared between calls.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local db: %w", err)
	}

	return &Repositories{
		DB:     db,
		KV:     kv.NewSQLiteRepository(db),
		Mirror: mirror.NewSQLiteRepository(db),
	}, nil
}
