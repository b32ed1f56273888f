package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pets-gateway/internal/adapters/storage/sqlengine"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `CREATE TABLE IF NOT EXISTS pets (
	_id    BIGSERIAL PRIMARY KEY,
	name   TEXT NOT NULL,
	breed  TEXT,
	gender INTEGER NOT NULL DEFAULT 0 CHECK (gender IN (0, 1, 2)),
	weight INTEGER CHECK (weight IS NULL OR weight >= 0)
)`

// Dialect: placeholders $n e INSERT ... RETURNING _id.
var Dialect = sqlengine.Dialect{
	Name:            "postgres",
	Rebind:          sqlengine.Dollar,
	InsertReturning: true,
	AcquireTimeout:  5 * time.Second,
}

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate crea la tabla pets si no existe.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create pets table: %w", err)
	}
	return nil
}

// Store es el engine Postgres.
type Store struct {
	*sqlengine.Engine
	db *sql.DB
}

// OpenStore abre, migra y devuelve el engine listo para usar.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore envuelve un *sql.DB ya abierto (y migrado).
func NewStore(db *sql.DB) *Store {
	return &Store{Engine: sqlengine.New(db, Dialect), db: db}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) DB() *sql.DB { return s.db }
