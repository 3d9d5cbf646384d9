package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/eventdrop/internal/filex"
	"github.com/dmitrijs2005/eventdrop/internal/logging"
	sc "github.com/dmitrijs2005/eventdrop/internal/server/config"
	"github.com/dmitrijs2005/eventdrop/internal/sizex"
	"github.com/google/uuid"
)

// LocalStorage keeps events in a directory tree under BaseDir. Ids are
// slash-separated paths relative to BaseDir, laid out like S3Storage keys.
type LocalStorage struct {
	BaseDir       string
	root          string
	trash         string
	publicBaseURL string
	limit         int64
	logger        logging.Logger
}

func NewLocalStorage(cfg *sc.Config, logger logging.Logger) (*LocalStorage, error) {
	base, err := filex.EnsureDir(cfg.LocalStorageDir)
	if err != nil {
		return nil, err
	}

	logger = logger.With("module", "storage", "driver", sc.StorageDriverLocal)

	limit, err := sizex.Parse(cfg.StorageLimit)
	if err != nil {
		logger.Warn(context.Background(), "storage limit is not a size, reporting 0", "value", cfg.StorageLimit, "error", err)
		limit = 0
	}

	return &LocalStorage{
		BaseDir:       base,
		root:          strings.Trim(cfg.StorageRootFolder, "/"),
		trash:         strings.Trim(cfg.StorageTrashFolder, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		limit:         limit,
		logger:        logger,
	}, nil
}

// resolve maps an id to a path inside BaseDir, rejecting ids that escape it.
func (s *LocalStorage) resolve(id string) (string, error) {
	p := filepath.Join(s.BaseDir, filepath.FromSlash(id))
	rel, err := filepath.Rel(s.BaseDir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage id %q", id)
	}
	return p, nil
}

func (s *LocalStorage) CreateFolder(ctx context.Context, name string) (string, error) {
	folderID := path.Join(s.root, uuid.NewString())

	dir, err := s.resolve(folderID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, folderMarker), []byte(name), 0o640); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	s.logger.Debug(ctx, "folder created", "folder_id", folderID, "name", name)
	return folderID, nil
}

func (s *LocalStorage) DeleteFolder(ctx context.Context, folderID string) error {
	dir, err := s.resolve(folderID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

func (s *LocalStorage) UploadFile(ctx context.Context, folderID, name, mimeType string, r io.Reader, size int64) (string, error) {
	fileID := path.Join(folderID, uuid.NewString(), path.Base(name))

	dst, err := s.resolve(fileID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o770); err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}

	written, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && written != size {
		err = fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if err != nil {
		_ = filex.RemoveQuietly(dst)
		return "", fmt.Errorf("upload file: %w", err)
	}
	return fileID, nil
}

// GrantPublicRead makes the file world-readable.
func (s *LocalStorage) GrantPublicRead(ctx context.Context, fileID string) error {
	p, err := s.resolve(fileID)
	if err != nil {
		return err
	}
	if err := os.Chmod(p, 0o644); err != nil {
		return fmt.Errorf("grant public read: %w", err)
	}
	return nil
}

func (s *LocalStorage) PublicLink(fileID string) string {
	return s.publicBaseURL + "/" + escapeKey(fileID)
}

func (s *LocalStorage) Quota(ctx context.Context) (*Quota, error) {
	inDrive, err := s.dirSize(s.root)
	if err != nil {
		return nil, err
	}

	var inTrash int64
	if s.trash != "" && s.trash != s.root {
		if inTrash, err = s.dirSize(s.trash); err != nil {
			return nil, err
		}
	}

	return &Quota{
		Limit:        s.limit,
		Usage:        inDrive + inTrash,
		UsageInDrive: inDrive,
		UsageInTrash: inTrash,
	}, nil
}

func (s *LocalStorage) dirSize(folder string) (int64, error) {
	dir := s.BaseDir
	if folder != "" {
		var err error
		if dir, err = s.resolve(folder); err != nil {
			return 0, err
		}
	}
	n, err := filex.DirSize(dir)
	if err != nil {
		return 0, fmt.Errorf("quota: %w", err)
	}
	return n, nil
}

var (
	_ FileStorage = (*LocalStorage)(nil)
	_ FileStorage = (*S3Storage)(nil)
)
