// Package sqlstore implements the member store on database/sql, for a
// Postgres database through pgx or a local SQLite file.
package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/infrastructure/persistence"
	"hazboun-backend/pkg/errors"
)

// Dialect covers the differences between the supported databases.
type Dialect struct {
	Name   string
	Driver string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", Placeholder: func(int) string { return "?" }}
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DialectFor looks up a dialect by name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case Postgres.Name, "pgx":
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
	}
}

// Store is the SQL-backed member store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
	logger  *zap.Logger
	newID   func() string
}

// Open connects to the database, applies pending migrations and returns the
// store. For SQLite dsn is a file path; its directory is created if needed.
func Open(ctx context.Context, dialect Dialect, dsn, table string, logger *zap.Logger) (*Store, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if dialect.Name == SQLite.Name {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil && !stderrors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		// One writer at a time; avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}

	store := NewStore(db, dialect, table, logger)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an open database. The caller runs Migrate.
func NewStore(db *sql.DB, dialect Dialect, table string, logger *zap.Logger) *Store {
	return &Store{db: db, dialect: dialect, table: table, logger: logger, newID: uuid.NewString}
}

// Migrate brings the members table to the latest schema.
func (s *Store) Migrate(ctx context.Context) error {
	migrator := NewMigrator(s.db, s.dialect)
	for _, m := range memberMigrations(s.table) {
		if err := migrator.Register(m); err != nil {
			return err
		}
	}
	if err := migrator.MigrateLatest(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", s.table, err)
	}
	s.logger.Debug("Member schema is current", zap.String("dialect", s.dialect.Name), zap.Int("version", migrator.Latest()))
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// FetchAll returns every member ordered by generation ascending.
func (s *Store) FetchAll(ctx context.Context) ([]entities.FamilyMember, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC, %s ASC",
		strings.Join(persistence.Columns, ", "), s.table, persistence.ColGeneration, persistence.ColName)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeError("fetch", err)
	}
	defer func() { _ = rows.Close() }()

	var members []entities.FamilyMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, storeError("fetch", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("fetch", err)
	}
	return members, nil
}

// Insert stores a draft under a new UUID.
func (s *Store) Insert(ctx context.Context, draft entities.MemberDraft) (entities.FamilyMember, error) {
	row := persistence.RowFromDraft(draft)
	row.ID = s.newID()

	placeholders := make([]string, len(persistence.Columns))
	for i := range placeholders {
		placeholders[i] = s.dialect.Placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(persistence.Columns, ", "), strings.Join(placeholders, ", "))

	_, err := s.db.ExecContext(ctx, query,
		row.ID, row.Name, row.BirthYear, row.Location, row.Country, row.Email,
		row.Phone, row.Profession, row.Branch, row.Generation,
		persistence.EncodeParents(row.Parents), row.Bio)
	if err != nil {
		return entities.FamilyMember{}, storeError("insert", err)
	}
	return row.ToMember(), nil
}

// Update applies a patch and returns the stored row.
func (s *Store) Update(ctx context.Context, id string, patch entities.MemberPatch) (entities.FamilyMember, error) {
	cols := persistence.PatchColumns(patch)
	if len(cols) == 0 {
		return s.get(ctx, id, "update")
	}

	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]interface{}, 0, len(names)+1)
	for i, name := range names {
		sets = append(sets, fmt.Sprintf("%s = %s", name, s.dialect.Placeholder(i+1)))
		value := cols[name]
		if name == persistence.ColParents {
			value = persistence.EncodeParents(value.([]string))
		}
		args = append(args, value)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		s.table, strings.Join(sets, ", "), persistence.ColID, s.dialect.Placeholder(len(names)+1))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return entities.FamilyMember{}, storeError("update", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entities.FamilyMember{}, errors.NewNotFoundError("family member")
	}
	return s.get(ctx, id, "update")
}

// Remove deletes the row with id. Deleting a missing row is not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", s.table, persistence.ColID, s.dialect.Placeholder(1))
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return storeError("delete", err)
	}
	return nil
}

// Replace swaps the whole table for members in one transaction. Used to seed
// a database from an exported file.
func (s *Store) Replace(ctx context.Context, members []entities.FamilyMember) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("replace", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+s.table); err != nil {
		return storeError("replace", err)
	}
	placeholders := make([]string, len(persistence.Columns))
	for i := range placeholders {
		placeholders[i] = s.dialect.Placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(persistence.Columns, ", "), strings.Join(placeholders, ", "))
	for _, m := range members {
		row := persistence.RowFromMember(m)
		if row.ID == "" {
			row.ID = s.newID()
		}
		if _, err := tx.ExecContext(ctx, query,
			row.ID, row.Name, row.BirthYear, row.Location, row.Country, row.Email,
			row.Phone, row.Profession, row.Branch, row.Generation,
			persistence.EncodeParents(row.Parents), row.Bio); err != nil {
			return storeError("replace", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeError("replace", err)
	}
	s.logger.Info("Replaced family members", zap.Int("count", len(members)))
	return nil
}

func (s *Store) get(ctx context.Context, id, operation string) (entities.FamilyMember, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(persistence.Columns, ", "), s.table, persistence.ColID, s.dialect.Placeholder(1))
	m, err := scanMember(s.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.FamilyMember{}, errors.NewNotFoundError("family member")
	}
	if err != nil {
		return entities.FamilyMember{}, storeError(operation, err)
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(sc scanner) (entities.FamilyMember, error) {
	var (
		row                           persistence.MemberRow
		birthYear                     sql.NullInt64
		email, phone, profession, bio sql.NullString
		parents                       sql.NullString
	)
	if err := sc.Scan(&row.ID, &row.Name, &birthYear, &row.Location, &row.Country,
		&email, &phone, &profession, &row.Branch, &row.Generation, &parents, &bio); err != nil {
		return entities.FamilyMember{}, err
	}
	if birthYear.Valid {
		year := int(birthYear.Int64)
		row.BirthYear = &year
	}
	row.Email = nullString(email)
	row.Phone = nullString(phone)
	row.Profession = nullString(profession)
	row.Bio = nullString(bio)
	row.Parents = persistence.DecodeParents(parents.String)
	return row.ToMember(), nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func storeError(operation string, err error) error {
	return errors.NewStoreError(operation, err.Error(), err)
}
