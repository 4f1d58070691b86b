package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/chunk"
)

// ReplacePackage swaps the stored package for one (usage, arch) slot in a
// single transaction: the previous metadata and chunks are deleted, a fresh
// metadata row is inserted, the version index is upserted to the new id, and
// the payload is written chunk by chunk. On any failure the transaction is
// rolled back and the previous package remains current.
func (s *Store) ReplacePackage(ctx context.Context, usage apk.APKType, arch apk.APKArch, version string, meta *apk.FileMeta, payload []byte, maxChunkSize int) (err error) {
	if meta == nil {
		return fmt.Errorf("meta is required")
	}
	chunks, err := chunk.Split(payload, maxChunkSize)
	if err != nil {
		return err
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var previousID int64
	found := true
	row := tx.QueryRowContext(ctx, "SELECT filestore_id FROM mad_apks WHERE usage = ? AND arch = ?", int(usage), int(arch))
	if scanErr := row.Scan(&previousID); scanErr != nil {
		if !errors.Is(scanErr, sql.ErrNoRows) {
			err = scanErr
			return err
		}
		found = false
	}
	if found {
		// Chunks cascade off the metadata row.
		if _, err = tx.ExecContext(ctx, "DELETE FROM filestore_meta WHERE filestore_id = ?", previousID); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO filestore_meta (filename, size, mimetype, digest, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, meta.Filename, meta.Size, meta.Mimetype, meta.Digest, formatTime(meta.CreatedAt))
	if err != nil {
		return err
	}
	newID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO mad_apks (usage, arch, version, filestore_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(usage, arch) DO UPDATE SET
			version = excluded.version,
			filestore_id = excluded.filestore_id
	`, int(usage), int(arch), version, newID); err != nil {
		return err
	}

	if err = insertChunks(ctx, tx, newID, chunks); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	meta.ID = newID
	return nil
}

// DeletePackageData removes the version record, metadata, and chunks for one
// slot in a single transaction. It reports whether a package was present.
func (s *Store) DeletePackageData(ctx context.Context, usage apk.APKType, arch apk.APKArch) (found bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var filestoreID int64
	row := tx.QueryRowContext(ctx, "SELECT filestore_id FROM mad_apks WHERE usage = ? AND arch = ?", int(usage), int(arch))
	if scanErr := row.Scan(&filestoreID); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return false, tx.Commit()
		}
		err = scanErr
		return false, err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM mad_apks WHERE usage = ? AND arch = ?", int(usage), int(arch)); err != nil {
		return false, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM filestore_meta WHERE filestore_id = ?", filestoreID); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
