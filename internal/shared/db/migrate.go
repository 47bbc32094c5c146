package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationNames: файлы миграций в порядке применения
func MigrationNames() ([]string, error) {
	entries, err := fs.ReadDir(MigrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Migrate применяет все *.sql из migrations в лексикографическом порядке.
// Каждый файл выполняется в своей транзакции, поэтому BEGIN/COMMIT в файлах не нужны.
// Миграции идемпотентны (IF NOT EXISTS), повторный запуск безопасен.
func Migrate(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	names, err := MigrationNames()
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		sqlb, err := MigrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, err
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin tx for %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(sqlb)); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("migration %s failed: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit %s failed: %w", name, err)
		}
	}
	return names, nil
}
