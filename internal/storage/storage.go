// Package storage implements the storage media for versioned application
// packages. Every medium satisfies APKStorage so callers can swap the
// database-backed and filesystem-backed implementations freely.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/SpielerNogard/MAD/internal/apk"
	"github.com/SpielerNogard/MAD/internal/config"
	"github.com/SpielerNogard/MAD/internal/store"
)

// Storage type tags as reported by StorageType.
const (
	TypeDatabase   = "db"
	TypeFilesystem = "fs"
)

// APKStorage is the storage medium abstraction for versioned packages keyed
// by (usage, architecture).
//
// SaveFile collapses all failures into a boolean so the surface stays
// uniform across media; details go to the log. retry is part of the shared
// surface and is not honored by the bundled media. Reload and Shutdown are
// lifecycle hooks: the filesystem medium rebuilds its index on Reload, the
// database medium treats both as no-ops.
type APKStorage interface {
	SaveFile(ctx context.Context, usage apk.APKType, arch apk.APKArch, version, mimetype string, data io.Reader, retry bool) bool
	DeleteFile(ctx context.Context, usage apk.APKType, arch apk.APKArch) (bool, error)
	GetCurrentVersion(ctx context.Context, usage apk.APKType, arch apk.APKArch) (string, error)
	GetCurrentPackageInfo(ctx context.Context, usage apk.APKType, arch apk.APKArch) (*apk.PackageInfo, error)
	GetPackageSet(ctx context.Context, usage apk.APKType) (apk.PackageSet, error)
	GetFile(ctx context.Context, usage apk.APKType, arch apk.APKArch) ([]byte, *apk.PackageInfo, error)
	StorageType() string
	Reload(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// New selects and constructs the storage medium named by cfg.StorageType.
// For the database medium the caller keeps ownership of st and closes it
// after Shutdown.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (APKStorage, error) {
	switch cfg.StorageType {
	case TypeDatabase:
		return NewDatabaseStorage(st, cfg.ChunkMaxSize, logger)
	case TypeFilesystem:
		return NewFilesystemStorage(cfg.APKDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

type slotKey struct {
	usage apk.APKType
	arch  apk.APKArch
}

// slotLocks hands out one mutex per (usage, arch) slot so writes to
// unrelated slots do not serialize against each other.
type slotLocks struct {
	mu    sync.Mutex
	locks map[slotKey]*sync.Mutex
}

func (l *slotLocks) get(usage apk.APKType, arch apk.APKArch) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[slotKey]*sync.Mutex)
	}
	key := slotKey{usage: usage, arch: arch}
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
