package history

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLiteBackend keeps the delivery record in a SQLite database. Marks are
// INSERT OR IGNORE, so repeated marking of the same identity is a no-op.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteBackend{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (b *SQLiteBackend) Has(feedKey, itemID string) (bool, error) {
	var exists bool
	err := b.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM deliveries WHERE feed_key = ? AND item_id = ?)
	`, feedKey, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query delivery record: %w", err)
	}
	return exists, nil
}

func (b *SQLiteBackend) Add(feedKey, itemID string) error {
	_, err := b.db.Exec(`
		INSERT OR IGNORE INTO deliveries (feed_key, item_id) VALUES (?, ?)
	`, feedKey, itemID)
	if err != nil {
		return fmt.Errorf("failed to insert delivery record: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Counts() (map[string]int, error) {
	rows, err := b.db.Query(`
		SELECT feed_key, COUNT(*) FROM deliveries GROUP BY feed_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var feedKey string
		var count int
		if err := rows.Scan(&feedKey, &count); err != nil {
			return nil, fmt.Errorf("failed to scan delivery count: %w", err)
		}
		counts[feedKey] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery counts: %w", err)
	}

	return counts, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
