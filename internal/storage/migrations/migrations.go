// Package migrations applies the embedded schema files for both storage
// backends. Files run in lexical order and must be idempotent (CREATE ...
// IF NOT EXISTS), so reapplying on every startup is safe.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PgExecer is the slice of pgxpool.Pool the Postgres runner needs.
type PgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ChExecer is the slice of the ClickHouse driver connection the ClickHouse
// runner needs.
type ChExecer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// ApplyPostgres runs every embedded Postgres migration against db.
func ApplyPostgres(ctx context.Context, db PgExecer) error {
	scripts, err := readScripts(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, script := range scripts {
		if _, err := db.Exec(ctx, script.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", script.name, err)
		}
	}
	return nil
}

// ApplyClickhouse runs every embedded ClickHouse migration against db. The
// driver rejects multi-statement Exec calls, so each file is split into
// single statements first.
func ApplyClickhouse(ctx context.Context, db ChExecer) error {
	scripts, err := readScripts(ClickhouseFS, "clickhouse")
	if err != nil {
		return err
	}
	for _, script := range scripts {
		for _, stmt := range SplitStatements(script.sql) {
			if err := db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", script.name, err)
			}
		}
	}
	return nil
}

type script struct {
	name string
	sql  string
}

// readScripts collects the non-empty .sql files of one embedded directory
// in lexical order.
func readScripts(fsys fs.FS, dir string) ([]script, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	scripts := make([]script, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		scripts = append(scripts, script{name: name, sql: string(data)})
	}
	return scripts, nil
}

// SplitStatements drops -- comment lines and splits the remainder on
// semicolons. Migration files therefore must not put semicolons inside
// string literals or block comments; ours contain neither.
func SplitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
