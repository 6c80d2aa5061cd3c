package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// Store implements ports.StrategyStore using the local filesystem.
// Each strategy is one JSON document named after its ID.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".magnetrade/strategies".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".magnetrade", "strategies")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", domain.ErrEmptyID
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid strategy id %q", id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Save writes the strategy document atomically.
// It writes to a temporary file first, syncs, and then renames it over the destination.
func (s *Store) Save(ctx context.Context, strategy *domain.Strategy) error {
	destPath, err := s.path(strategy.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure strategy directory: %w", err)
	}

	doc, err := strategy.ToDocument()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal strategy: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+strategy.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing strategy file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to strategy file: %w", err)
	}
	return nil
}

// Load reads a strategy document by ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.Strategy, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}
	return readStrategy(filePath)
}

func readStrategy(filePath string) (*domain.Strategy, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrStrategyNotFound
		}
		return nil, fmt.Errorf("failed to read strategy file: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategy %s: %w", filepath.Base(filePath), err)
	}
	return domain.FromDocument(doc)
}

// ListByOwner scans the directory for documents owned by owner.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]*domain.Strategy, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*domain.Strategy{}, nil
		}
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}

	list := make([]*domain.Strategy, 0)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		strategy, err := readStrategy(filepath.Join(s.BasePath, name))
		if err != nil {
			// Removed between ReadDir and ReadFile.
			if errors.Is(err, domain.ErrStrategyNotFound) {
				continue
			}
			return nil, err
		}
		if strategy.Owner == owner {
			list = append(list, strategy)
		}
	}
	domain.SortByCreation(list)
	return list, nil
}

// Delete removes the strategy file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete strategy file: %w", err)
	}
	return nil
}
