package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SpielerNogard/MAD/internal/chunk"
)

// ErrNotFound is returned when a payload read finds no chunk rows for the
// requested file store id.
var ErrNotFound = errors.New("not found")

// WriteChunks splits payload and persists one chunk row per slice, tagged
// with filestoreID and an explicit chunk_index that fixes the reassembly
// order.
func (s *Store) WriteChunks(ctx context.Context, filestoreID int64, payload []byte, maxChunkSize int) error {
	chunks, err := chunk.Split(payload, maxChunkSize)
	if err != nil {
		return err
	}
	return insertChunks(ctx, s.db, filestoreID, chunks)
}

// ReadChunks fetches all chunk rows for filestoreID ordered by chunk_index
// and joins them back into the original payload.
func (s *Store) ReadChunks(ctx context.Context, filestoreID int64) ([]byte, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM filestore_chunks WHERE filestore_id = ? ORDER BY chunk_index ASC
	`, filestoreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chunks := [][]byte{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		chunks = append(chunks, data)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrNotFound
	}

	return chunk.Join(chunks), nil
}

// DeleteChunks removes all chunk rows for filestoreID; removing a file store
// id with no chunks is a no-op.
func (s *Store) DeleteChunks(ctx context.Context, filestoreID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM filestore_chunks WHERE filestore_id = ?", filestoreID)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertChunks(ctx context.Context, db execer, filestoreID int64, chunks [][]byte) error {
	for index, data := range chunks {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO filestore_chunks (filestore_id, chunk_index, size, data)
			VALUES (?, ?, ?, ?)
		`, filestoreID, index, len(data), data); err != nil {
			return err
		}
	}
	return nil
}
