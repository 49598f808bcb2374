// Package store persists retrieved article tables in a SQLite database so
// past searches can be listed and re-exported without hitting PubMed again.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// Store manages the result SQLite database.
type Store struct {
	db *sql.DB
}

// SearchRecord describes one saved search.
type SearchRecord struct {
	ID          int64
	Term        string
	Source      string
	CreatedAt   time.Time
	ResultCount int
}

// Open opens or creates the SQLite database at path, creating parent
// directories and the schema as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			term TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL,
			result_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id INTEGER NOT NULL REFERENCES searches(id),
			pmid INTEGER NOT NULL,
			ti TEXT,
			ab TEXT,
			fau TEXT,
			dp TEXT,
			mh TEXT,
			ot TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_search ON articles(search_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:30], err)
		}
	}
	return nil
}

// SaveSearch stores a search and its article rows in one transaction,
// preserving retrieval order, and returns the new search ID.
func (s *Store) SaveSearch(term, source string, articles []types.Article) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO searches (term, source, created_at, result_count) VALUES (?, ?, ?, ?)`,
		term, source, time.Now().UTC().Format(time.RFC3339), len(articles),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting search: %w", err)
	}
	searchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading search id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO articles (search_id, pmid, ti, ab, fau, dp, mh, ot) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		fau, mh, ot, err := marshalLists(a)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.Exec(searchID, a.PMID, a.TI, a.AB, fau, a.DP, mh, ot); err != nil {
			return 0, fmt.Errorf("inserting article %d: %w", a.PMID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return searchID, nil
}

// ListSearches returns all saved searches, most recent first.
func (s *Store) ListSearches() ([]SearchRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, term, source, created_at, result_count FROM searches ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var (
			rec     SearchRecord
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.Term, &rec.Source, &created, &rec.ResultCount); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339, created); parseErr == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Articles returns the article rows of a saved search in retrieval order.
func (s *Store) Articles(searchID int64) ([]types.Article, error) {
	rows, err := s.db.Query(
		`SELECT pmid, ti, ab, fau, dp, mh, ot FROM articles WHERE search_id = ? ORDER BY rowid`,
		searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	for rows.Next() {
		var (
			a           types.Article
			fau, mh, ot string
		)
		if err := rows.Scan(&a.PMID, &a.TI, &a.AB, &fau, &a.DP, &mh, &ot); err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		if err := unmarshalLists(&a, fau, mh, ot); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// marshalLists encodes the list-valued columns as JSON text.
func marshalLists(a types.Article) (fau, mh, ot string, err error) {
	for _, pair := range []struct {
		dst *string
		src []string
	}{{&fau, a.FAU}, {&mh, a.MH}, {&ot, a.OT}} {
		data, marshalErr := json.Marshal(pair.src)
		if marshalErr != nil {
			return "", "", "", fmt.Errorf("encoding article %d lists: %w", a.PMID, marshalErr)
		}
		*pair.dst = string(data)
	}
	return fau, mh, ot, nil
}

func unmarshalLists(a *types.Article, fau, mh, ot string) error {
	for _, pair := range []struct {
		dst *[]string
		src string
	}{{&a.FAU, fau}, {&a.MH, mh}, {&a.OT, ot}} {
		if pair.src == "" {
			continue
		}
		if err := json.Unmarshal([]byte(pair.src), pair.dst); err != nil {
			return fmt.Errorf("decoding article %d lists: %w", a.PMID, err)
		}
	}
	return nil
}
