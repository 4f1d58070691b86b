package apk

import "time"

// FileMeta is one metadata row in the file store. Rows are immutable:
// created on save, deleted when the package is removed, never updated.
type FileMeta struct {
	ID        int64     `json:"id" yaml:"id"`
	Filename  string    `json:"filename" yaml:"filename"`
	Size      int64     `json:"size" yaml:"size"`
	Mimetype  string    `json:"mimetype" yaml:"mimetype"`
	Digest    string    `json:"digest" yaml:"digest"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// PackageInfo describes the currently stored package for one
// (usage, architecture) slot: the metadata row plus its version.
type PackageInfo struct {
	FileID    int64     `json:"file_id" yaml:"file_id"`
	Filename  string    `json:"filename" yaml:"filename"`
	Size      int64     `json:"size" yaml:"size"`
	Mimetype  string    `json:"mimetype" yaml:"mimetype"`
	Digest    string    `json:"digest" yaml:"digest"`
	Version   string    `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// PackageSet aggregates the current packages of one usage across all
// architectures that have one.
type PackageSet map[APKArch]PackageInfo
