package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pets-gateway/internal/adapters/storage/sqlengine"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Memory abre una base efímera con una sola conexión que se pierde al cerrar.
// Mientras un cursor siga abierto las demás operaciones esperan hasta
// AcquireTimeout y fallan.
const Memory = ":memory:"

const schema = `CREATE TABLE IF NOT EXISTS pets (
	_id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name   TEXT NOT NULL,
	breed  TEXT,
	gender INTEGER NOT NULL DEFAULT 0 CHECK (gender IN (0, 1, 2)),
	weight INTEGER CHECK (weight IS NULL OR weight >= 0)
)`

// Dialect: placeholders "?" nativos y LastInsertId.
var Dialect = sqlengine.Dialect{Name: "sqlite", AcquireTimeout: 5 * time.Second}

// Store es el engine por defecto: un archivo SQLite en modo WAL.
type Store struct {
	*sqlengine.Engine
	db   *sql.DB
	path string
}

// Open crea (si hace falta) y abre la base en path, aplica pragmas y schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "pets.db"
	}

	memory := path == Memory
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if memory {
		// cada conexión a :memory: es una base distinta
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
	}
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create pets table: %w", err)
	}

	return &Store{
		Engine: sqlengine.New(db, Dialect),
		db:     db,
		path:   path,
	}, nil
}

// Close cierra el pool. Los cursores abiertos deben cerrarse antes.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB expone el *sql.DB para tests de integración.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Path() string { return s.path }
