// Package sqlite implements both backend contracts (identity provider and
// record store) on a local SQLite database under the app data dir.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"psyplanner/internal/backend"
	"psyplanner/internal/backend/sqlite/migrations"
)

const dbFileName = "psyplanner.db"

var (
	_ backend.RecordStore = (*Store)(nil)
	_ backend.Identity    = (*Store)(nil)
)

// Store is the local backend. It also carries the data dir so the identity
// side can persist the signing secret and the current session token next to
// the database.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens (creating if needed) the database under dir and applies any
// pending migrations.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	s := &Store{db: db, dir: dir}
	if err := s.applyMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) applyMigrations() error {
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}
	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}
	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// tableColumns whitelists the tables and columns reachable through the
// generic Select/Insert surface. Anything else is rejected before any SQL is
// interpolated.
var tableColumns = map[string]map[string]bool{
	"clients": {
		"id": true, "user_id": true, "full_name": true, "phone": true,
		"email": true, "comment": true, "created_at": true,
	},
	"sessions": {
		"id": true, "user_id": true, "client_id": true, "session_date": true,
		"session_time": true, "duration": true, "session_type": true,
		"comment": true, "created_at": true,
	},
	"payments": {
		"id": true, "user_id": true, "client_id": true, "amount": true,
		"currency": true, "payment_date": true, "comment": true, "created_at": true,
	},
	"notes": {
		"id": true, "user_id": true, "client_id": true, "content": true,
		"created_at": true,
	},
}

func checkColumn(table, column string) error {
	cols, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("unknown table: %s", table)
	}
	if !cols[column] {
		return fmt.Errorf("unknown column %s.%s", table, column)
	}
	return nil
}

// Select returns all rows of table matching the equality filter, ordered by
// orderBy ("column" or "column DESC"). A zero filter selects the whole table.
func (s *Store) Select(ctx context.Context, table string, filter backend.Filter, orderBy string) ([]backend.Record, error) {
	if _, ok := tableColumns[table]; !ok {
		return nil, &backend.StoreError{Op: "select", Table: table, Message: "unknown table: " + table}
	}

	q := "SELECT * FROM " + table
	var args []any
	if filter.Column != "" {
		if err := checkColumn(table, filter.Column); err != nil {
			return nil, &backend.StoreError{Op: "select", Table: table, Message: err.Error(), Err: err}
		}
		q += " WHERE " + filter.Column + " = ?"
		args = append(args, filter.Value)
	}
	if orderBy != "" {
		col, dir, ok := splitOrderBy(orderBy)
		if !ok {
			err := fmt.Errorf("bad order by: %s", orderBy)
			return nil, &backend.StoreError{Op: "select", Table: table, Message: err.Error(), Err: err}
		}
		if err := checkColumn(table, col); err != nil {
			return nil, &backend.StoreError{Op: "select", Table: table, Message: err.Error(), Err: err}
		}
		q += " ORDER BY " + col + " " + dir
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &backend.StoreError{Op: "select", Table: table, Message: err.Error(), Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &backend.StoreError{Op: "select", Table: table, Message: err.Error(), Err: err}
	}

	var out []backend.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &backend.StoreError{Op: "select", Table: table, Message: err.Error(), Err: err}
		}
		rec := make(backend.Record, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
			} else {
				rec[c] = vals[i]
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &backend.StoreError{Op: "select", Table: table, Message: err.Error(), Err: err}
	}
	return out, nil
}

// Insert writes one row. Missing id and created_at columns are filled in.
func (s *Store) Insert(ctx context.Context, table string, rec backend.Record) error {
	if _, ok := tableColumns[table]; !ok {
		return &backend.StoreError{Op: "insert", Table: table, Message: "unknown table: " + table}
	}

	row := make(backend.Record, len(rec)+2)
	for k, v := range rec {
		row[k] = v
	}
	if row.Str("id") == "" {
		row["id"] = uuid.New().String()
	}
	if row.Str("created_at") == "" {
		row["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	cols := make([]string, 0, len(row))
	for c := range row {
		if err := checkColumn(table, c); err != nil {
			return &backend.StoreError{Op: "insert", Table: table, Message: err.Error(), Err: err}
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		args[i] = row[c]
		marks[i] = "?"
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return &backend.StoreError{Op: "insert", Table: table, Message: err.Error(), Err: err}
	}
	return nil
}

func splitOrderBy(orderBy string) (col, dir string, ok bool) {
	fields := strings.Fields(strings.TrimSpace(orderBy))
	switch len(fields) {
	case 1:
		return fields[0], "ASC", true
	case 2:
		switch strings.ToUpper(fields[1]) {
		case "ASC", "DESC":
			return fields[0], strings.ToUpper(fields[1]), true
		}
	}
	return "", "", false
}
