package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/SpielerNogard/MAD/internal/apk"
)

const metaColumns = "filestore_id, filename, size, mimetype, digest, created_at"

// CreateMeta inserts one metadata row and returns its generated id.
func (s *Store) CreateMeta(ctx context.Context, meta *apk.FileMeta) (int64, error) {
	if meta == nil {
		return 0, fmt.Errorf("meta is required")
	}
	if strings.TrimSpace(meta.Filename) == "" {
		return 0, fmt.Errorf("filename is required")
	}
	if meta.Size < 0 {
		return 0, fmt.Errorf("size must be >= 0")
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO filestore_meta (filename, size, mimetype, digest, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, meta.Filename, meta.Size, meta.Mimetype, meta.Digest, formatTime(meta.CreatedAt))
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	meta.ID = id
	return id, nil
}

// GetMeta returns one metadata row by id, or nil if absent.
func (s *Store) GetMeta(ctx context.Context, id int64) (*apk.FileMeta, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+metaColumns+` FROM filestore_meta WHERE filestore_id = ?`, id)
	return scanMeta(row)
}

// DeleteMeta deletes one metadata row. The chunk rows cascade. Deleting an
// absent id is a no-op.
func (s *Store) DeleteMeta(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM filestore_meta WHERE filestore_id = ?", id)
	return err
}

func scanMeta(scanner interface {
	Scan(dest ...any) error
}) (*apk.FileMeta, error) {
	meta := apk.FileMeta{}
	var createdAt string

	err := scanner.Scan(&meta.ID, &meta.Filename, &meta.Size, &meta.Mimetype, &meta.Digest, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	parsedCreated, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	meta.CreatedAt = parsedCreated

	return &meta, nil
}
