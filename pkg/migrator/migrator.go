// Package migrator applies the goose migration sets of each bounded context.
package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Set is one bounded context's migrations. VersionTable keeps its goose
// history apart from the other sets sharing the database.
type Set struct {
	Name         string
	FS           fs.FS
	VersionTable string
}

// SetStatus summarizes where one set stands.
type SetStatus struct {
	Name    string
	Current int64
	Latest  int64
}

// Pending reports whether the set has migrations not yet applied.
func (s SetStatus) Pending() bool { return s.Current < s.Latest }

// ErrUnknownSet is returned by Select for names not registered.
var ErrUnknownSet = errors.New("unknown migration set")

// Select returns the sets named in names, in the order given. No names
// selects every set.
func Select(all []Set, names ...string) ([]Set, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Set, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	out := make([]Set, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSet, n)
		}
		out = append(out, s)
	}
	return out, nil
}

// Migrator runs goose against one database. goose keeps its base FS and
// table name in package state, so a Migrator must not be used concurrently.
type Migrator struct {
	db *sql.DB
}

// Open connects to dbURL through the pgx driver.
func Open(dbURL string) (*Migrator, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return &Migrator{db: db}, nil
}

// Close releases the connection.
func (m *Migrator) Close() error { return m.db.Close() }

func use(s Set) {
	goose.SetBaseFS(s.FS)
	if s.VersionTable != "" {
		goose.SetTableName(s.VersionTable)
	}
}

// Up applies every pending migration of each set, stopping at the first failure.
func (m *Migrator) Up(ctx context.Context, sets ...Set) error {
	for _, s := range sets {
		use(s)
		if err := goose.UpContext(ctx, m.db, "."); err != nil {
			return fmt.Errorf("%s: up: %w", s.Name, err)
		}
	}
	return nil
}

// Down rolls back the latest applied migration of s.
func (m *Migrator) Down(ctx context.Context, s Set) error {
	use(s)
	if err := goose.DownContext(ctx, m.db, "."); err != nil {
		return fmt.Errorf("%s: down: %w", s.Name, err)
	}
	return nil
}

// Status reports the applied and latest available version of each set.
func (m *Migrator) Status(ctx context.Context, sets ...Set) ([]SetStatus, error) {
	out := make([]SetStatus, 0, len(sets))
	for _, s := range sets {
		use(s)
		current, err := goose.GetDBVersionContext(ctx, m.db)
		if err != nil {
			return nil, fmt.Errorf("%s: version: %w", s.Name, err)
		}
		latest, err := latestVersion()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		out = append(out, SetStatus{Name: s.Name, Current: current, Latest: latest})
	}
	return out, nil
}

func latestVersion() (int64, error) {
	migrations, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		if errors.Is(err, goose.ErrNoMigrationFiles) {
			return 0, nil
		}
		return 0, fmt.Errorf("collect migrations: %w", err)
	}
	last, err := migrations.Last()
	if err != nil {
		return 0, nil //nolint:nilerr // empty set
	}
	return last.Version, nil
}

// RunAll opens dbURL, applies every set and closes the connection.
func RunAll(dbURL string, sets ...Set) error {
	m, err := Open(dbURL)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck
	return m.Up(context.Background(), sets...)
}
