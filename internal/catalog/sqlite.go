package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/fandex/internal/models"
)

// SQLiteStore persists catalog items as JSON documents keyed by (domain, id).
// Items keep their first insertion order, which is the catalog order.
type SQLiteStore struct {
	db *sqlx.DB
}

type itemRow struct {
	ID    string `db:"id"`
	Title string `db:"title"`
	Data  string `db:"data"`
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = dbPath + "?_journal_mode=WAL"
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalog_items (
		domain TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (domain, id)
	);

	CREATE INDEX IF NOT EXISTS idx_catalog_items_title ON catalog_items(domain, title);
	`
	_, err := db.Exec(schema)
	return err
}

// Upsert inserts or replaces items of domain d in one transaction. Items
// without an id get a new UUID. It returns the number of items written.
func (s *SQLiteStore) Upsert(ctx context.Context, d models.Domain, items []models.CatalogItem) (int, error) {
	if _, err := models.ParseDomain(string(d)); err != nil {
		return 0, err
	}
	AssignIDs(items)
	if err := Validate(items); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO catalog_items (domain, id, title, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(domain, id) DO UPDATE SET
		   title = excluded.title, data = excluded.data, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	n := 0
	for _, item := range items {
		if models.IsNil(item) {
			continue
		}
		data, err := json.Marshal(item)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal item %s: %w", item.ItemID(), err)
		}
		if _, err := stmt.ExecContext(ctx, string(d), item.ItemID(), item.ItemTitle(), string(data), now, now); err != nil {
			return 0, fmt.Errorf("failed to upsert item %s: %w", item.ItemID(), err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

// List returns the items of domain d in catalog order.
func (s *SQLiteStore) List(ctx context.Context, d models.Domain) ([]models.CatalogItem, error) {
	if _, err := models.NewItem(d); err != nil {
		return nil, err
	}
	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, title, data FROM catalog_items WHERE domain = ? ORDER BY rowid`, string(d)); err != nil {
		return nil, fmt.Errorf("failed to list %s items: %w", d, err)
	}

	items := make([]models.CatalogItem, 0, len(rows))
	for _, r := range rows {
		item, _ := models.NewItem(d)
		if err := json.Unmarshal([]byte(r.Data), item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item %s: %w", r.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Delete removes one item. Deleting a missing item is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, d models.Domain, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM catalog_items WHERE domain = ? AND id = ?`, string(d), id)
	return err
}

// Count returns the number of items of domain d.
func (s *SQLiteStore) Count(ctx context.Context, d models.Domain) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM catalog_items WHERE domain = ?`, string(d))
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AssignIDs gives every item with a blank id a new UUID.
func AssignIDs(items []models.CatalogItem) {
	for _, item := range items {
		if models.IsNil(item) || strings.TrimSpace(item.ItemID()) != "" {
			continue
		}
		id := uuid.New().String()
		switch it := item.(type) {
		case *models.Anime:
			it.ID = id
		case *models.Manga:
			it.ID = id
		case *models.Quiz:
			it.ID = id
		}
	}
}

// SQLiteSource loads one domain from a SQLiteStore.
type SQLiteSource struct {
	store  *SQLiteStore
	domain models.Domain
	path   string
}

// NewSQLiteSource creates a source over an open store. path is for display.
func NewSQLiteSource(store *SQLiteStore, d models.Domain, path string) *SQLiteSource {
	return &SQLiteSource{store: store, domain: d, path: path}
}

func (s *SQLiteSource) Domain() models.Domain { return s.domain }
func (s *SQLiteSource) String() string        { return "sqlite:" + s.path }

// Load lists the domain's items.
func (s *SQLiteSource) Load(ctx context.Context) ([]models.CatalogItem, error) {
	return s.store.List(ctx, s.domain)
}
