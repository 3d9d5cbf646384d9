package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/logging"
	"github.com/dmitrijs2005/eventdrop/internal/server/models"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventdrop/internal/server/staging"
	"github.com/dmitrijs2005/eventdrop/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

const (
	msgNoActiveEvent     = "Nenhum evento ativo encontrado"
	msgGuestNameRequired = "Nome do convidado é obrigatório"
	msgFilesUploadedFmt  = "%d arquivo(s) enviado(s) com sucesso"
)

// Reasons a file is skipped.
const (
	SkipStaging    = "staging"
	SkipUpload     = "upload"
	SkipPermission = "permission"
	SkipPersist    = "persist"
)

// FileResult is the outcome of one file. Upload is nil when the file was
// skipped, in which case SkipReason and Err say why.
type FileResult struct {
	OriginalName string
	Upload       *models.Upload
	SkipReason   string
	Err          error
}

func (r FileResult) OK() bool { return r.Upload != nil }

// UploadResult is the aggregated response of an upload request.
type UploadResult struct {
	Message  string
	Event    string
	Files    []*models.Upload
	Warnings []Warning
}

// Aggregate keeps the successful files in input order and turns every
// skipped file into a warning.
func Aggregate(eventName string, results []FileResult) *UploadResult {
	out := &UploadResult{Event: eventName, Files: []*models.Upload{}}
	for _, r := range results {
		if r.OK() {
			out.Files = append(out.Files, r.Upload)
			continue
		}
		out.Warnings = append(out.Warnings, Warning{Step: r.SkipReason, Subject: r.OriginalName, Err: r.Err})
	}
	out.Message = fmt.Sprintf(msgFilesUploadedFmt, len(out.Files))
	return out
}

type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.FileStorage
	logger      logging.Logger
	metrics     Metrics
	workers     int
	now         func() time.Time
}

// NewUploadService builds the service. workers bounds how many files of one
// request are processed at once; 1 processes them strictly in sequence.
func NewUploadService(db *sql.DB, m repomanager.RepositoryManager, st storage.FileStorage, logger logging.Logger, metrics Metrics, workers int) *UploadService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if workers < 1 {
		workers = 1
	}
	return &UploadService{
		db:          db,
		repomanager: m,
		storage:     st,
		logger:      logger.With("module", "uploads"),
		metrics:     metrics,
		workers:     workers,
		now:         time.Now,
	}
}

// ResolveActiveEvent returns the event uploads go to. No active event, or a
// broken single-active invariant, is ErrorNoActiveEvent.
func (s *UploadService) ResolveActiveEvent(ctx context.Context) (*models.Event, error) {
	event, err := s.repomanager.Events(s.db).GetActive(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorMultipleActive) {
			return nil, common.NewError(common.ErrorNoActiveEvent, msgNoActiveEvent, nil)
		}
		return nil, common.NewError(common.ErrorUpstream, "resolve active event", err)
	}
	return event, nil
}

// Upload stores every staged file of form in the folder of event. Failures
// are isolated per file; the staged copies are removed in every case.
func (s *UploadService) Upload(ctx context.Context, event *models.Event, form *staging.Form) (*UploadResult, error) {
	in := uploadInput{GuestName: strings.TrimSpace(form.GuestName)}
	if err := validate.Struct(in); err != nil {
		return nil, common.NewError(common.ErrorValidation, msgGuestNameRequired, nil)
	}

	results := make([]FileResult, len(form.Files))

	if s.workers == 1 {
		for i, f := range form.Files {
			results[i] = s.processFile(ctx, event, in.GuestName, f)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, f := range form.Files {
			g.Go(func() error {
				results[i] = s.processFile(ctx, event, in.GuestName, f)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := Aggregate(event.Name, results)
	s.logger.Info(ctx, "upload processed",
		"event_id", event.ID, "received", len(form.Files), "stored", len(res.Files))
	return res, nil
}

func (s *UploadService) processFile(ctx context.Context, event *models.Event, guest string, f *staging.File) FileResult {
	defer func() {
		if err := f.Remove(); err != nil {
			s.logger.Warn(ctx, "temp file not removed", "path", f.Path, "error", err)
		}
	}()

	skip := func(reason string, err error, args ...any) FileResult {
		s.logger.Warn(ctx, "file skipped", append([]any{"reason", reason, "file", f.OriginalName, "error", err}, args...)...)
		s.metrics.FileSkipped(reason)
		return FileResult{OriginalName: f.OriginalName, SkipReason: reason, Err: err}
	}

	storedName := fmt.Sprintf("%d_%s", s.now().UnixMilli(), f.OriginalName)

	fh, err := f.Open()
	if err != nil {
		return skip(SkipStaging, err)
	}
	fileID, err := s.storage.UploadFile(ctx, event.DriveFolderID, storedName, f.MimeType, fh, f.Size)
	_ = fh.Close()
	if err != nil {
		return skip(SkipUpload, err)
	}

	// objects left behind below are orphaned in storage
	if err := s.storage.GrantPublicRead(ctx, fileID); err != nil {
		return skip(SkipPermission, err, "orphaned_file_id", fileID)
	}

	link := s.storage.PublicLink(fileID)

	rec, err := s.repomanager.Uploads(s.db).Create(ctx, &models.Upload{
		EventID:      event.ID,
		OriginalName: f.OriginalName,
		StoredName:   storedName,
		GuestName:    guest,
		DriveFileID:  fileID,
		DriveLink:    link,
		MimeType:     f.MimeType,
		SizeBytes:    f.Size,
	})
	if err != nil {
		return skip(SkipPersist, err, "orphaned_file_id", fileID)
	}

	s.metrics.FileUploaded(f.Size)
	return FileResult{OriginalName: f.OriginalName, Upload: rec}
}
