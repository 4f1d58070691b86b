package store

import (
	"context"
	"database/sql"

	"github.com/SpielerNogard/MAD/internal/apk"
)

// VersionRecord maps one (usage, arch) slot to its current file store entry.
type VersionRecord struct {
	Usage       apk.APKType
	Arch        apk.APKArch
	Version     string
	FilestoreID int64
}

// UpsertPackage records the current version for one (usage, arch) slot. An
// existing record for the slot is replaced in place; the UNIQUE(usage, arch)
// constraint keeps the index at one row per slot.
func (s *Store) UpsertPackage(ctx context.Context, usage apk.APKType, arch apk.APKArch, version string, filestoreID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mad_apks (usage, arch, version, filestore_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(usage, arch) DO UPDATE SET
			version = excluded.version,
			filestore_id = excluded.filestore_id
	`, int(usage), int(arch), version, filestoreID)
	return err
}

// LookupPackage returns the current version record for one slot, or nil if
// the slot is empty.
func (s *Store) LookupPackage(ctx context.Context, usage apk.APKType, arch apk.APKArch) (*VersionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT usage, arch, version, filestore_id FROM mad_apks WHERE usage = ? AND arch = ?
	`, int(usage), int(arch))

	record := VersionRecord{}
	err := row.Scan(&record.Usage, &record.Arch, &record.Version, &record.FilestoreID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListPackages returns the version records for all architectures of one
// usage, ordered by architecture.
func (s *Store) ListPackages(ctx context.Context, usage apk.APKType) ([]VersionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT usage, arch, version, filestore_id FROM mad_apks WHERE usage = ? ORDER BY arch ASC
	`, int(usage))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []VersionRecord{}
	for rows.Next() {
		record := VersionRecord{}
		if err := rows.Scan(&record.Usage, &record.Arch, &record.Version, &record.FilestoreID); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// RemovePackage deletes the version record for one slot; removing an empty
// slot is a no-op.
func (s *Store) RemovePackage(ctx context.Context, usage apk.APKType, arch apk.APKArch) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM mad_apks WHERE usage = ? AND arch = ?", int(usage), int(arch))
	return err
}
