package holdings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minji/book-fairy/internal/types"
)

// Store is the PostgreSQL-backed holdings store. It is read-only during
// request processing; ReplaceAll is an administrative, exclusive-writer
// operation.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and ensures the holdings schema
// exists.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS holdings (
			isbn             TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			author           TEXT,
			publisher        TEXT,
			call_number      TEXT,
			publication_year TEXT,
			description      TEXT,
			status           TEXT
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure holdings schema: %w", err)
	}
	return nil
}

// ReplaceAll clears the table and inserts the given records in one
// transaction. Re-running with the same source is idempotent. Records with
// duplicate identifiers keep the first occurrence, matching the loader's
// first-wins contract.
func (s *Store) ReplaceAll(ctx context.Context, records []Record) (int, error) {
	deduped := dedupeByISBN(records)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin reload transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM holdings`); err != nil {
		return 0, fmt.Errorf("failed to clear holdings: %w", err)
	}

	rows := make([][]any, 0, len(deduped))
	for _, r := range deduped {
		rows = append(rows, []any{
			r.ISBN, r.Title, r.Author, r.Publisher,
			r.CallNumber, r.PublicationYear, r.Description, r.Status,
		})
	}

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{"holdings"},
		[]string{"isbn", "title", "author", "publisher", "call_number", "publication_year", "description", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy holdings rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit reload: %w", err)
	}
	return int(inserted), nil
}

// All reads every record in store order.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT isbn, title, COALESCE(author, ''), COALESCE(publisher, ''),
		       COALESCE(call_number, ''), COALESCE(publication_year, ''),
		       COALESCE(description, ''), COALESCE(status, '')
		FROM holdings ORDER BY isbn`)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ISBN, &r.Title, &r.Author, &r.Publisher,
			&r.CallNumber, &r.PublicationYear, &r.Description, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan holdings row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM holdings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return n, nil
}

// FindByISBN looks a candidate up by identifier, tolerating ISBN-10/13
// variance on both sides. The full-table scan keeps false negatives out;
// see matchByISBN for the complexity contract.
func (s *Store) FindByISBN(ctx context.Context, query string) (*Result, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	match, err := matchByISBN(records, query)
	if err != nil {
		return nil, err
	}
	return &Result{Record: *match, Match: types.MatchISBN}, nil
}

// FindByTitleAuthor is the lower-confidence fallback lookup.
func (s *Store) FindByTitleAuthor(ctx context.Context, title, author string) (*Result, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	match, err := matchByTitleAuthor(records, title, author)
	if err != nil {
		return nil, err
	}
	return &Result{Record: *match, Match: types.MatchTitleAuthor}, nil
}

func dedupeByISBN(records []Record) []Record {
	seen := make(map[string]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.ISBN != "" {
			if seen[r.ISBN] {
				continue
			}
			seen[r.ISBN] = true
		}
		out = append(out, r)
	}
	return out
}
