package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/chunk"
	"github.com/SpielerNogard/MAD/internal/store"
)

// ErrNotFound is returned by GetFile when the requested slot holds no
// package.
var ErrNotFound = errors.New("no package stored for slot")

// DatabaseStorage keeps packages in the SQLite substrate, split into
// bounded-size chunk rows. Saves for the same (usage, arch) slot serialize
// on a per-slot lock; lookups never lock and read committed state only.
type DatabaseStorage struct {
	st           *store.Store
	maxChunkSize int
	logger       *slog.Logger
	locks        slotLocks
}

// NewDatabaseStorage wires a database-backed medium over st. maxChunkSize
// governs the split granularity and must be positive.
func NewDatabaseStorage(st *store.Store, maxChunkSize int, logger *slog.Logger) (*DatabaseStorage, error) {
	if maxChunkSize <= 0 {
		return nil, chunk.ErrInvalidChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatabaseStorage{st: st, maxChunkSize: maxChunkSize, logger: logger}, nil
}

// SaveFile stores a new package version for the slot, replacing any previous
// one. All failures are logged and collapsed into a false return; the
// replacement is transactional, so a false return means the previous version
// (if any) is still current. retry is not honored by this medium.
func (s *DatabaseStorage) SaveFile(ctx context.Context, usage apk.APKType, arch apk.APKArch, version, mimetype string, data io.Reader, retry bool) bool {
	if err := s.saveFile(ctx, usage, arch, version, mimetype, data); err != nil {
		s.logger.Error("unable to save package",
			"usage", usage.String(),
			"arch", arch.String(),
			"version", version,
			"error", err)
		return false
	}
	return true
}

func (s *DatabaseStorage) saveFile(ctx context.Context, usage apk.APKType, arch apk.APKArch, version, mimetype string, data io.Reader) error {
	if version == "" {
		return fmt.Errorf("version is required")
	}
	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	digest := blake2b.Sum256(payload)
	meta := &apk.FileMeta{
		Filename: apk.GenerateFilename(usage, arch, version, mimetype),
		Size:     int64(len(payload)),
		Mimetype: mimetype,
		Digest:   hex.EncodeToString(digest[:]),
	}

	lock := s.locks.get(usage, arch)
	lock.Lock()
	defer lock.Unlock()

	s.logger.Info("starting package upload",
		"usage", usage.String(),
		"arch", arch.String(),
		"version", version,
		"size", meta.Size)
	if err := s.st.ReplacePackage(ctx, usage, arch, version, meta, payload, s.maxChunkSize); err != nil {
		return fmt.Errorf("replace package %s/%s: %w", usage, arch, err)
	}
	s.logger.Info("finished package upload",
		"usage", usage.String(),
		"arch", arch.String(),
		"version", version)
	return nil
}

// DeleteFile removes the package for the slot. An empty slot counts as
// success; only substrate failures surface as errors.
func (s *DatabaseStorage) DeleteFile(ctx context.Context, usage apk.APKType, arch apk.APKArch) (bool, error) {
	lock := s.locks.get(usage, arch)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.st.DeletePackageData(ctx, usage, arch); err != nil {
		return false, fmt.Errorf("delete package %s/%s: %w", usage, arch, err)
	}
	return true, nil
}

// GetCurrentVersion returns the stored version for the slot, or "" when the
// slot is empty.
func (s *DatabaseStorage) GetCurrentVersion(ctx context.Context, usage apk.APKType, arch apk.APKArch) (string, error) {
	record, err := s.st.LookupPackage(ctx, usage, arch)
	if err != nil {
		return "", fmt.Errorf("lookup package %s/%s: %w", usage, arch, err)
	}
	if record == nil {
		return "", nil
	}
	return record.Version, nil
}

// GetCurrentPackageInfo joins the version index with the metadata rows. A
// version record whose metadata no longer resolves is pruned and the slot
// reported as empty.
func (s *DatabaseStorage) GetCurrentPackageInfo(ctx context.Context, usage apk.APKType, arch apk.APKArch) (*apk.PackageInfo, error) {
	record, err := s.st.LookupPackage(ctx, usage, arch)
	if err != nil {
		return nil, fmt.Errorf("lookup package %s/%s: %w", usage, arch, err)
	}
	if record == nil {
		return nil, nil
	}
	return s.resolveRecord(ctx, record)
}

// GetPackageSet returns the current package of every architecture stored
// for one usage. Dangling records are pruned along the way.
func (s *DatabaseStorage) GetPackageSet(ctx context.Context, usage apk.APKType) (apk.PackageSet, error) {
	records, err := s.st.ListPackages(ctx, usage)
	if err != nil {
		return nil, fmt.Errorf("list packages %s: %w", usage, err)
	}

	set := apk.PackageSet{}
	for i := range records {
		info, err := s.resolveRecord(ctx, &records[i])
		if err != nil {
			return nil, err
		}
		if info != nil {
			set[records[i].Arch] = *info
		}
	}
	if len(set) == 0 {
		return nil, nil
	}
	return set, nil
}

// GetFile reassembles the stored payload for the slot and verifies it
// against the recorded size and content digest, so torn or corrupted chunk
// data is reported instead of served.
func (s *DatabaseStorage) GetFile(ctx context.Context, usage apk.APKType, arch apk.APKArch) ([]byte, *apk.PackageInfo, error) {
	info, err := s.GetCurrentPackageInfo(ctx, usage, arch)
	if err != nil {
		return nil, nil, err
	}
	if info == nil {
		return nil, nil, fmt.Errorf("%s/%s: %w", usage, arch, ErrNotFound)
	}

	payload, err := s.st.ReadChunks(ctx, info.FileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) && info.Size == 0 {
			payload = nil
		} else {
			return nil, nil, fmt.Errorf("read chunks %s/%s: %w", usage, arch, err)
		}
	}
	if int64(len(payload)) != info.Size {
		return nil, nil, fmt.Errorf("package %s/%s: stored %d bytes, expected %d", usage, arch, len(payload), info.Size)
	}
	if info.Digest != "" {
		digest := blake2b.Sum256(payload)
		if hex.EncodeToString(digest[:]) != info.Digest {
			return nil, nil, fmt.Errorf("package %s/%s: content digest mismatch", usage, arch)
		}
	}
	return payload, info, nil
}

// StorageType identifies this medium.
func (s *DatabaseStorage) StorageType() string {
	return TypeDatabase
}

// Reload is a no-op: the database is the single source of truth.
func (s *DatabaseStorage) Reload(ctx context.Context) error {
	return nil
}

// Shutdown is a no-op; the owner of the store closes it.
func (s *DatabaseStorage) Shutdown(ctx context.Context) error {
	return nil
}

func (s *DatabaseStorage) resolveRecord(ctx context.Context, record *store.VersionRecord) (*apk.PackageInfo, error) {
	meta, err := s.st.GetMeta(ctx, record.FilestoreID)
	if err != nil {
		return nil, fmt.Errorf("get meta %d: %w", record.FilestoreID, err)
	}
	if meta == nil {
		// Dangling version record; prune it and report the slot empty.
		s.logger.Warn("pruning version record with missing metadata",
			"usage", record.Usage.String(),
			"arch", record.Arch.String(),
			"filestore_id", record.FilestoreID)
		if err := s.st.RemovePackage(ctx, record.Usage, record.Arch); err != nil {
			return nil, fmt.Errorf("prune package %s/%s: %w", record.Usage, record.Arch, err)
		}
		return nil, nil
	}

	return &apk.PackageInfo{
		FileID:    meta.ID,
		Filename:  meta.Filename,
		Size:      meta.Size,
		Mimetype:  meta.Mimetype,
		Digest:    meta.Digest,
		Version:   record.Version,
		CreatedAt: meta.CreatedAt,
	}, nil
}
