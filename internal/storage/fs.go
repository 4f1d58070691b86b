package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/SpielerNogard/MAD/internal/apk"
)

// FilesystemStorage keeps packages as plain files under a root directory.
// The canonical filename encodes (usage, arch, version, mimetype), so the
// full state can be rebuilt from a directory scan on Reload.
type FilesystemStorage struct {
	root   string
	logger *slog.Logger

	mu    sync.Mutex
	index map[slotKey]fsEntry
}

type fsEntry struct {
	version   string
	mimetype  string
	filename  string
	size      int64
	digest    string
	createdAt time.Time
}

// NewFilesystemStorage creates a filesystem medium rooted at root and loads
// the existing packages from disk.
func NewFilesystemStorage(root string, logger *slog.Logger) (*FilesystemStorage, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("apk dir is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &FilesystemStorage{root: abs, logger: logger}
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveFile writes the payload to a temp file and renames it into place, then
// removes the previous version's file for the slot. Failures are logged and
// collapsed into a false return. retry is not honored by this medium.
func (s *FilesystemStorage) SaveFile(ctx context.Context, usage apk.APKType, arch apk.APKArch, version, mimetype string, data io.Reader, retry bool) bool {
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

func (s *FilesystemStorage) saveFile(ctx context.Context, usage apk.APKType, arch apk.APKArch, version, mimetype string, data io.Reader) error {
	if version == "" {
		return fmt.Errorf("version is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "upload-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		cleanup()
		return err
	}
	n, err := io.Copy(io.MultiWriter(tmp, hasher), data)
	if err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}

	filename := apk.GenerateFilename(usage, arch, version, mimetype)
	dst := filepath.Join(s.root, filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return err
	}

	key := slotKey{usage: usage, arch: arch}
	if previous, ok := s.index[key]; ok && previous.filename != filename {
		if err := os.Remove(filepath.Join(s.root, previous.filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("unable to remove previous package file",
				"filename", previous.filename,
				"error", err)
		}
	}
	if s.index == nil {
		s.index = make(map[slotKey]fsEntry)
	}
	s.index[key] = fsEntry{
		version:   version,
		mimetype:  mimetype,
		filename:  filename,
		size:      n,
		digest:    hex.EncodeToString(hasher.Sum(nil)),
		createdAt: time.Now().UTC(),
	}
	return nil
}

// DeleteFile removes the package file for the slot. An empty slot counts as
// success.
func (s *FilesystemStorage) DeleteFile(ctx context.Context, usage apk.APKType, arch apk.APKArch) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{usage: usage, arch: arch}
	entry, ok := s.index[key]
	if !ok {
		return true, nil
	}
	if err := os.Remove(filepath.Join(s.root, entry.filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	delete(s.index, key)
	return true, nil
}

// GetCurrentVersion returns the stored version for the slot, or "" when the
// slot is empty.
func (s *FilesystemStorage) GetCurrentVersion(ctx context.Context, usage apk.APKType, arch apk.APKArch) (string, error) {
	info, err := s.GetCurrentPackageInfo(ctx, usage, arch)
	if err != nil || info == nil {
		return "", err
	}
	return info.Version, nil
}

// GetCurrentPackageInfo returns the indexed package for the slot after
// confirming the file still exists. An index entry whose file vanished
// out-of-band is pruned and the slot reported as empty.
func (s *FilesystemStorage) GetCurrentPackageInfo(ctx context.Context, usage apk.APKType, arch apk.APKArch) (*apk.PackageInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked(usage, arch)
}

// GetPackageSet returns the current packages of one usage across all
// architectures.
func (s *FilesystemStorage) GetPackageSet(ctx context.Context, usage apk.APKType) (apk.PackageSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set := apk.PackageSet{}
	for _, arch := range apk.Archs() {
		info, err := s.resolveLocked(usage, arch)
		if err != nil {
			return nil, err
		}
		if info != nil {
			set[arch] = *info
		}
	}
	if len(set) == 0 {
		return nil, nil
	}
	return set, nil
}

// GetFile reads the stored payload for the slot back from disk.
func (s *FilesystemStorage) GetFile(ctx context.Context, usage apk.APKType, arch apk.APKArch) ([]byte, *apk.PackageInfo, error) {
	info, err := s.GetCurrentPackageInfo(ctx, usage, arch)
	if err != nil {
		return nil, nil, err
	}
	if info == nil {
		return nil, nil, fmt.Errorf("%s/%s: %w", usage, arch, ErrNotFound)
	}

	payload, err := os.ReadFile(filepath.Join(s.root, info.Filename))
	if err != nil {
		return nil, nil, err
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
func (s *FilesystemStorage) StorageType() string {
	return TypeFilesystem
}

// Reload rebuilds the in-memory index from a directory scan. Files whose
// names do not follow the canonical scheme are skipped with a warning.
func (s *FilesystemStorage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return err
	}

	index := make(map[slotKey]fsEntry)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		usage, arch, version, mimetype, err := apk.ParseFilename(entry.Name())
		if err != nil {
			s.logger.Warn("skipping unrecognized file", "filename", entry.Name())
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		index[slotKey{usage: usage, arch: arch}] = fsEntry{
			version:   version,
			mimetype:  mimetype,
			filename:  entry.Name(),
			size:      info.Size(),
			createdAt: info.ModTime().UTC(),
		}
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
	return nil
}

// Shutdown is a no-op for the filesystem medium.
func (s *FilesystemStorage) Shutdown(ctx context.Context) error {
	return nil
}

func (s *FilesystemStorage) resolveLocked(usage apk.APKType, arch apk.APKArch) (*apk.PackageInfo, error) {
	key := slotKey{usage: usage, arch: arch}
	entry, ok := s.index[key]
	if !ok {
		return nil, nil
	}

	if _, err := os.Stat(filepath.Join(s.root, entry.filename)); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// File vanished out-of-band; drop the stale entry.
		s.logger.Warn("pruning index entry with missing file",
			"usage", usage.String(),
			"arch", arch.String(),
			"filename", entry.filename)
		delete(s.index, key)
		return nil, nil
	}

	return &apk.PackageInfo{
		Filename:  entry.filename,
		Size:      entry.size,
		Mimetype:  entry.mimetype,
		Digest:    entry.digest,
		Version:   entry.version,
		CreatedAt: entry.createdAt,
	}, nil
}
