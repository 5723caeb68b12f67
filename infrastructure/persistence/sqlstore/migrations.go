package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// SchemaVersion is one applied migration as recorded in the history table.
type SchemaVersion struct {
	Version     int       `json:"version"`
	Description string    `json:"description"`
	AppliedAt   time.Time `json:"applied_at"`
}

// Migration moves the schema from Version-1 to Version. Down is optional.
type Migration struct {
	Version     int
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// MigrationFunc runs inside the transaction of its migration.
type MigrationFunc func(ctx context.Context, tx *sql.Tx) error

// Migrator applies registered migrations and records them in a history table.
type Migrator struct {
	db         *sql.DB
	dialect    Dialect
	migrations []Migration
}

const historyTable = "schema_migrations"

// NewMigrator creates a migrator for db.
func NewMigrator(db *sql.DB, dialect Dialect) *Migrator {
	return &Migrator{db: db, dialect: dialect}
}

// Register adds a migration. Versions must be unique and start at 1.
func (m *Migrator) Register(migration Migration) error {
	if migration.Version < 1 {
		return fmt.Errorf("invalid migration: version must be at least 1")
	}
	if migration.Up == nil {
		return fmt.Errorf("invalid migration %d: missing up step", migration.Version)
	}
	for _, existing := range m.migrations {
		if existing.Version == migration.Version {
			return fmt.Errorf("migration %d already exists", migration.Version)
		}
	}
	m.migrations = append(m.migrations, migration)
	sort.Slice(m.migrations, func(i, j int) bool { return m.migrations[i].Version < m.migrations[j].Version })
	return nil
}

// Latest returns the highest registered version.
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// Migrate moves the schema to target, forwards or backwards.
func (m *Migrator) Migrate(ctx context.Context, target int) error {
	if err := m.ensureHistory(ctx); err != nil {
		return err
	}
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if target == current {
		return nil
	}
	if target < current {
		return m.rollback(ctx, current, target)
	}
	return m.upgrade(ctx, current, target)
}

// MigrateLatest applies every pending migration.
func (m *Migrator) MigrateLatest(ctx context.Context) error {
	return m.Migrate(ctx, m.Latest())
}

func (m *Migrator) upgrade(ctx context.Context, current, target int) error {
	for current < target {
		migration := m.find(current + 1)
		if migration == nil {
			return fmt.Errorf("no migration found from version %d to %d", current, current+1)
		}
		err := m.inTx(ctx, func(tx *sql.Tx) error {
			if err := migration.Up(ctx, tx); err != nil {
				return err
			}
			query := fmt.Sprintf("INSERT INTO %s (version, description, applied_at) VALUES (%s, %s, %s)",
				historyTable, m.dialect.Placeholder(1), m.dialect.Placeholder(2), m.dialect.Placeholder(3))
			_, err := tx.ExecContext(ctx, query, migration.Version, migration.Description, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d->%d failed: %w", current, migration.Version, err)
		}
		current = migration.Version
	}
	return nil
}

func (m *Migrator) rollback(ctx context.Context, current, target int) error {
	for current > target {
		migration := m.find(current)
		if migration == nil {
			return fmt.Errorf("no rollback found from version %d to %d", current, current-1)
		}
		if migration.Down == nil {
			return fmt.Errorf("migration %d->%d does not support rollback", current-1, current)
		}
		err := m.inTx(ctx, func(tx *sql.Tx) error {
			if err := migration.Down(ctx, tx); err != nil {
				return err
			}
			query := fmt.Sprintf("DELETE FROM %s WHERE version = %s", historyTable, m.dialect.Placeholder(1))
			_, err := tx.ExecContext(ctx, query, migration.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("rollback %d->%d failed: %w", current, current-1, err)
		}
		current--
	}
	return nil
}

// CurrentVersion returns the highest applied version, or 0 on a fresh database.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return 0, err
	}
	var version sql.NullInt64
	row := m.db.QueryRowContext(ctx, "SELECT MAX(version) FROM "+historyTable)
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// History returns the applied migrations in order.
func (m *Migrator) History(ctx context.Context) ([]SchemaVersion, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, "SELECT version, description, applied_at FROM "+historyTable+" ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("read schema history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []SchemaVersion
	for rows.Next() {
		var v SchemaVersion
		var applied string
		if err := rows.Scan(&v.Version, &v.Description, &applied); err != nil {
			return nil, fmt.Errorf("scan schema history: %w", err)
		}
		v.AppliedAt, _ = time.Parse(time.RFC3339, applied)
		history = append(history, v)
	}
	return history, rows.Err()
}

func (m *Migrator) ensureHistory(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + historyTable + ` (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`
	if _, err := m.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema history: %w", err)
	}
	return nil
}

func (m *Migrator) find(version int) *Migration {
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			return &m.migrations[i]
		}
	}
	return nil
}

func (m *Migrator) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// memberMigrations returns the schema history of the members table.
func memberMigrations(table string) []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create " + table,
			Up: execStep(`CREATE TABLE IF NOT EXISTS ` + table + ` (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				birth_year INTEGER,
				location TEXT NOT NULL,
				country TEXT NOT NULL,
				email TEXT,
				phone TEXT,
				profession TEXT,
				branch TEXT NOT NULL,
				generation INTEGER NOT NULL,
				parents TEXT NOT NULL DEFAULT '[]',
				bio TEXT
			)`),
			Down: execStep(`DROP TABLE IF EXISTS ` + table),
		},
		{
			Version:     2,
			Description: "index " + table + " by generation",
			Up:          execStep(`CREATE INDEX IF NOT EXISTS idx_` + table + `_generation ON ` + table + ` (generation)`),
			Down:        execStep(`DROP INDEX IF EXISTS idx_` + table + `_generation`),
		},
	}
}

func execStep(stmt string) MigrationFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	}
}
