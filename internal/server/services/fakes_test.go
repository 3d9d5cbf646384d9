package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/dbx"
	"github.com/dmitrijs2005/eventdrop/internal/server/models"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/uploads"
	"github.com/dmitrijs2005/eventdrop/internal/server/storage"
)

// --- repositories ---

type fakeEventsRepo struct {
	events.Repository

	mu      sync.Mutex
	rows    []*models.Event
	counts  map[string]int64
	nextID  int
	listErr error

	deactivateAllErr error
	createErr        error
	getErr           error
	deactivateErr    error
}

func (f *fakeEventsRepo) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.rows {
		if r.Active && e.Active {
			return nil, errors.New(`duplicate key value violates unique constraint "events_single_active"`)
		}
	}
	f.nextID++
	cp := *e
	cp.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.nextID)
	cp.CreatedAt = time.Date(2025, 1, 1, 0, 0, f.nextID, 0, time.UTC)
	f.rows = append(f.rows, &cp)
	return &cp, nil
}

func (f *fakeEventsRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.rows {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEventsRepo) GetActive(ctx context.Context) (*models.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var found []*models.Event
	for _, r := range f.rows {
		if r.Active {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return nil, common.ErrorNotFound
	case 1:
		return found[0], nil
	default:
		return nil, common.ErrorMultipleActive
	}
}

func (f *fakeEventsRepo) DeactivateAll(ctx context.Context) (int64, error) {
	if f.deactivateAllErr != nil {
		return 0, f.deactivateAllErr
	}
	var n int64
	for _, r := range f.rows {
		if r.Active {
			r.Active = false
			n++
		}
	}
	return n, nil
}

func (f *fakeEventsRepo) Deactivate(ctx context.Context, id string) (*models.Event, error) {
	if f.deactivateErr != nil {
		return nil, f.deactivateErr
	}
	for _, r := range f.rows {
		if r.ID == id {
			r.Active = false
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeEventsRepo) ListWithUploadCounts(ctx context.Context) ([]*models.EventSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.EventSummary{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		out = append(out, &models.EventSummary{Event: *f.rows[i], UploadsCount: f.counts[f.rows[i].ID]})
	}
	return out, nil
}

func (f *fakeEventsRepo) active() []*models.Event {
	var out []*models.Event
	for _, r := range f.rows {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

type fakeUploadsRepo struct {
	uploads.Repository

	mu        sync.Mutex
	created   []*models.Upload
	createErr map[string]error // by original name
	countOut  int64
	countErr  error
}

func (f *fakeUploadsRepo) Create(ctx context.Context, u *models.Upload) (*models.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[u.OriginalName]; err != nil {
		return nil, err
	}
	cp := *u
	cp.ID = "up-" + u.OriginalName
	f.created = append(f.created, &cp)
	return &cp, nil
}

func (f *fakeUploadsRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	return f.countOut, f.countErr
}

type fakeRepoMgr struct {
	repomanager.RepositoryManager
	events  *fakeEventsRepo
	uploads *fakeUploadsRepo
}

func newFakeRepoMgr() *fakeRepoMgr {
	return &fakeRepoMgr{
		events:  &fakeEventsRepo{counts: map[string]int64{}},
		uploads: &fakeUploadsRepo{createErr: map[string]error{}},
	}
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoMgr) Events(dbx.DBTX) events.Repository           { return m.events }
func (m *fakeRepoMgr) Uploads(dbx.DBTX) uploads.Repository         { return m.uploads }

// --- storage ---

type fakeStorage struct {
	storage.FileStorage

	mu        sync.Mutex
	folders   map[string]string
	files     map[string]string
	nextID    int
	createErr error
	deleteErr error
	uploadErr map[string]error // by stored name suffix
	grantErr  map[string]error // by file id
	quota     *storage.Quota
	quotaErr  error
	deleted   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		folders:   map[string]string{},
		files:     map[string]string{},
		uploadErr: map[string]error{},
		grantErr:  map[string]error{},
	}
}

func (f *fakeStorage) CreateFolder(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("folder-%d", f.nextID)
	f.folders[id] = name
	return id, nil
}

func (f *fakeStorage) DeleteFolder(ctx context.Context, folderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.folders, folderID)
	f.deleted = append(f.deleted, folderID)
	return nil
}

func (f *fakeStorage) UploadFile(ctx context.Context, folderID, name, mimeType string, r io.Reader, size int64) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for suffix, err := range f.uploadErr {
		if len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix {
			return "", err
		}
	}
	f.nextID++
	id := fmt.Sprintf("%s/file-%d", folderID, f.nextID)
	f.files[id] = string(b)
	return id, nil
}

func (f *fakeStorage) GrantPublicRead(ctx context.Context, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, err := range f.grantErr {
		if id == fileID {
			return err
		}
	}
	return nil
}

func (f *fakeStorage) PublicLink(fileID string) string {
	return "https://files.test/" + fileID
}

func (f *fakeStorage) Quota(ctx context.Context) (*storage.Quota, error) {
	return f.quota, f.quotaErr
}

// --- metrics ---

type recordedMetrics struct {
	mu            sync.Mutex
	compensations []string
	uploaded      int
	bytes         int64
	skipped       []string
}

func (m *recordedMetrics) Compensation(step, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compensations = append(m.compensations, step+":"+outcome)
}

func (m *recordedMetrics) FileUploaded(size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded++
	m.bytes += size
}

func (m *recordedMetrics) FileSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped = append(m.skipped, reason)
}
