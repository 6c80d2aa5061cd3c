package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/magnetrade/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store implements ports.StrategyStore on a SQLite database.
// Uses WAL mode so listings can run while a save is in flight.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save upserts the strategy row.
func (s *Store) Save(ctx context.Context, strategy *domain.Strategy) error {
	if strategy.ID == "" {
		return domain.ErrEmptyID
	}
	doc, err := strategy.ToDocument()
	if err != nil {
		return err
	}
	graph, err := json.Marshal(doc.Strategy)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO strategies (id, uid, name, strategy, ordered_workflow, frequency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uid = excluded.uid,
			name = excluded.name,
			strategy = excluded.strategy,
			ordered_workflow = excluded.ordered_workflow,
			frequency = excluded.frequency,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, doc.ID, doc.UID, doc.Name, string(graph), doc.OrderedWorkflow, string(doc.Frequency),
		toUnixNano(doc.CreatedAt), toUnixNano(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save strategy: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, uid, name, strategy, ordered_workflow, frequency, created_at, updated_at FROM strategies`

type scanner interface {
	Scan(dest ...any) error
}

func scanStrategy(row scanner) (*domain.Strategy, error) {
	var (
		doc     domain.Document
		graph   string
		freq    string
		created int64
		updated int64
	)
	if err := row.Scan(&doc.ID, &doc.UID, &doc.Name, &graph, &doc.OrderedWorkflow, &freq, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(graph), &doc.Strategy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph of %s: %w", doc.ID, err)
	}
	doc.Frequency = domain.Frequency(freq)
	doc.CreatedAt = fromUnixNano(created)
	doc.UpdatedAt = fromUnixNano(updated)
	return domain.FromDocument(doc)
}

// Zero times are stored as 0.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// Load retrieves a strategy by ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.Strategy, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	strategy, err := scanStrategy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStrategyNotFound
		}
		return nil, fmt.Errorf("failed to load strategy: %w", err)
	}
	return strategy, nil
}

// ListByOwner returns the owner's strategies ordered by creation time.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]*domain.Strategy, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE uid = ? ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	defer rows.Close()

	list := make([]*domain.Strategy, 0)
	for rows.Next() {
		strategy, err := scanStrategy(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, strategy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate strategies: %w", err)
	}
	return list, nil
}

// Delete removes the strategy row.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM strategies WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete strategy: %w", err)
	}
	return nil
}
