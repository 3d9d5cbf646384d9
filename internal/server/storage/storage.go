// Package storage provides the file-storage backends events and uploads are
// written to. A folder is identified by an opaque id returned from
// CreateFolder; files are identified by the id returned from UploadFile.
package storage

import (
	"context"
	"io"
)

// Quota is the usage report of a backend, in bytes. Limit is 0 when unknown.
type Quota struct {
	Limit        int64
	Usage        int64
	UsageInDrive int64
	UsageInTrash int64
}

// FileStorage is implemented by S3Storage and LocalStorage.
type FileStorage interface {
	// CreateFolder creates a folder for an event under the configured root
	// folder and returns its id.
	CreateFolder(ctx context.Context, name string) (string, error)
	// DeleteFolder removes the folder and everything under it.
	DeleteFolder(ctx context.Context, folderID string) error
	// UploadFile stores size bytes read from r as name inside folderID and
	// returns the file id.
	UploadFile(ctx context.Context, folderID, name, mimeType string, r io.Reader, size int64) (string, error)
	// GrantPublicRead makes the file readable by anyone holding its link.
	GrantPublicRead(ctx context.Context, fileID string) error
	// PublicLink returns the link guests use to view the file.
	PublicLink(fileID string) string
	Quota(ctx context.Context) (*Quota, error)
}

const folderMarker = ".folder"
