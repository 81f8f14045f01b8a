package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                                // Local SQLite driver

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

// SQLiteRepository stores the catalog and the user collections. It serves
// both as a ports.RecordStore and a ports.CollectionRepository.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if driverName == "sqlite" {
		// One connection keeps in-memory shared-cache databases and
		// read-modify-write transactions free of SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma failed: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS models (
		lnk TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		designer TEXT,
		catalog_number TEXT,
		description TEXT,
		variants JSON NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_models_position ON models(position);

	CREATE TABLE IF NOT EXISTS collection_items (
		user_id TEXT NOT NULL,
		variant_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, variant_id)
	);
	CREATE INDEX IF NOT EXISTS idx_collection_items_user_id ON collection_items(user_id);
	`
	_, err := db.Exec(query)
	return err
}

// Load returns every model in catalog order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]domain.Model, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT lnk, designer, catalog_number, description, variants FROM models ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query models: %w", domain.ErrDataUnavailable, err)
	}
	defer rows.Close()

	models := []domain.Model{}
	for rows.Next() {
		var m domain.Model
		var designer, number, description sql.NullString
		var variantsJSON []byte
		if err := rows.Scan(&m.Key, &designer, &number, &description, &variantsJSON); err != nil {
			return nil, fmt.Errorf("%w: scan model: %w", domain.ErrDataUnavailable, err)
		}
		m.Designer = nullable(designer)
		m.CatalogNumber = nullable(number)
		m.Description = nullable(description)
		if err := json.Unmarshal(variantsJSON, &m.Variants); err != nil {
			return nil, fmt.Errorf("%w: decode variants of %q: %w", domain.ErrDataUnavailable, m.Key, err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate models: %w", domain.ErrDataUnavailable, err)
	}
	return models, nil
}

// Save replaces the whole catalog in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, models []domain.Model) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", domain.ErrDataUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM models`); err != nil {
		return fmt.Errorf("%w: clear models: %w", domain.ErrDataUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO models (lnk, position, designer, catalog_number, description, variants) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %w", domain.ErrDataUnavailable, err)
	}
	defer stmt.Close()

	for i, m := range models {
		variants := m.Variants
		if variants == nil {
			variants = []domain.Variant{}
		}
		variantsJSON, err := json.Marshal(variants)
		if err != nil {
			return fmt.Errorf("%w: encode variants of %q: %w", domain.ErrDataUnavailable, m.Key, err)
		}
		if _, err := stmt.ExecContext(ctx, m.Key, i, m.Designer, m.CatalogNumber, m.Description, string(variantsJSON)); err != nil {
			return fmt.Errorf("%w: insert %q: %w", domain.ErrDataUnavailable, m.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", domain.ErrDataUnavailable, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := listItems(ctx, r.db, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: read collection: %w", domain.ErrDataUnavailable, err)
	}
	return ids, nil
}

// Add inserts the pair if missing and reads the set back in the same transaction.
func (r *SQLiteRepository) Add(ctx context.Context, userID, variantID string) ([]string, error) {
	return r.mutate(ctx, userID,
		`INSERT OR IGNORE INTO collection_items (user_id, variant_id) VALUES (?, ?)`, userID, variantID)
}

func (r *SQLiteRepository) Remove(ctx context.Context, userID, variantID string) ([]string, error) {
	return r.mutate(ctx, userID,
		`DELETE FROM collection_items WHERE user_id = ? AND variant_id = ?`, userID, variantID)
}

func (r *SQLiteRepository) mutate(ctx context.Context, userID, query string, args ...any) ([]string, error) {
	ids, err := r.mutateTx(ctx, userID, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: update collection: %w", domain.ErrDataUnavailable, err)
	}
	return ids, nil
}

func (r *SQLiteRepository) mutateTx(ctx context.Context, userID, query string, args ...any) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	ids, err := listItems(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listItems(ctx context.Context, q querier, userID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT variant_id FROM collection_items WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
