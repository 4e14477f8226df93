package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DocumentStore reads and merges schemaless documents addressed by a
// slash-separated path such as "artifacts/app/users/uid/driver_data/config".
type DocumentStore interface {
	// GetDocument returns the document's fields, or ErrNotFound.
	GetDocument(ctx context.Context, path string) (map[string]any, error)

	// MergeDocument writes fields into the document, creating it if needed.
	// Fields not named in the call are left untouched.
	MergeDocument(ctx context.Context, path string, fields map[string]any) error
}

// Compile-time interface check.
var _ DocumentStore = (*Store)(nil)

// ValidatePath checks that path addresses a document: alternating
// collection/document segments, none of them empty.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
	}
	if len(segments)%2 != 0 {
		return fmt.Errorf("%w: %q names a collection, not a document", ErrInvalidPath, path)
	}
	return nil
}

// GetDocument loads the document stored at path. Returns ErrNotFound if the
// document does not exist.
func (s *Store) GetDocument(ctx context.Context, path string) (map[string]any, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE path = ?`, path,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting document %q: %w", path, err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling document %q: %w", path, err)
	}
	return fields, nil
}

// MergeDocument JSON-merges fields into the document at path. Existing
// fields that are not mentioned keep their values. A nil field value removes
// that field (JSON merge patch semantics).
func (s *Store) MergeDocument(ctx context.Context, path string, fields map[string]any) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if fields == nil {
		fields = map[string]any{}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshaling document %q: %w", path, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, data, updated_at)
		 VALUES (?, json_patch('{}', ?), datetime('now'))
		 ON CONFLICT(path) DO UPDATE SET
			data       = json_patch(documents.data, excluded.data),
			updated_at = excluded.updated_at`,
		path, string(data),
	)
	if err != nil {
		return fmt.Errorf("merging document %q: %w", path, err)
	}
	return nil
}
