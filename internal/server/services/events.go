// Package services contains the server-side business logic: the event
// lifecycle (EventService) and guest uploads (UploadService).
package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/logging"
	"github.com/dmitrijs2005/eventdrop/internal/server/models"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventdrop/internal/server/storage"
	"github.com/google/uuid"
)

const (
	msgEventNameRequired = "Nome do evento é obrigatório"
	msgEventIDRequired   = "ID do evento é obrigatório"
	msgEventNotFound     = "Evento não encontrado"
)

// CreatedEvent is the outcome of CreateEvent.
type CreatedEvent struct {
	Event    *models.Event
	Warnings []Warning
}

// ClosedEvent is the event after CloseEvent. ClosedAt is not persisted.
type ClosedEvent struct {
	Event        *models.Event
	UploadsCount int64
	ClosedAt     time.Time
	Warnings     []Warning
}

type EventList struct {
	Events       []*models.EventSummary
	Total        int
	ActiveEvents int
}

// QuotaReport is the storage usage with derived values, all in bytes.
type QuotaReport struct {
	Limit           int64
	Usage           int64
	UsageInDrive    int64
	UsageInTrash    int64
	Available       int64
	UsagePercentage float64
	Timestamp       time.Time
}

// EventService manages the event lifecycle: at most one event is active and
// receives uploads.
type EventService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.FileStorage
	logger      logging.Logger
	metrics     Metrics
	now         func() time.Time
}

func NewEventService(db *sql.DB, m repomanager.RepositoryManager, st storage.FileStorage, logger logging.Logger, metrics Metrics) *EventService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &EventService{
		db:          db,
		repomanager: m,
		storage:     st,
		logger:      logger.With("module", "events"),
		metrics:     metrics,
		now:         time.Now,
	}
}

// CreateEvent deactivates the current events, creates a storage folder and
// records the new active event. If the record cannot be written the folder
// is deleted again and an ErrorUpstream is returned.
func (s *EventService) CreateEvent(ctx context.Context, name string) (*CreatedEvent, error) {
	in := createEventInput{Name: strings.TrimSpace(name)}
	if err := validate.Struct(in); err != nil {
		return nil, common.NewError(common.ErrorValidation, msgEventNameRequired, nil)
	}

	sg := newSaga(s.logger, s.metrics)
	repo := s.repomanager.Events(s.db)

	n, err := repo.DeactivateAll(ctx)
	if err != nil {
		sg.warn(ctx, StepDeactivatePrevious, "", err)
	} else if n > 0 {
		s.logger.Info(ctx, "previous events deactivated", "count", n)
	}

	folderID, err := s.storage.CreateFolder(ctx, in.Name)
	if err != nil {
		return nil, sg.fail(common.NewError(common.ErrorUpstream, "create folder", err))
	}

	event, err := repo.Create(ctx, &models.Event{
		Name:          in.Name,
		DriveFolderID: folderID,
		Active:        true,
	})
	if err != nil {
		sg.compensate(ctx, StepDeleteFolder, folderID, func(ctx context.Context) error {
			return s.storage.DeleteFolder(ctx, folderID)
		})
		return nil, sg.fail(common.NewError(common.ErrorUpstream, "insert event", err))
	}

	s.logger.Info(ctx, "event created", "event_id", event.ID, "folder_id", folderID)
	return &CreatedEvent{Event: event, Warnings: sg.warnings}, nil
}

// CloseEvent marks the event inactive. Unknown or malformed ids yield
// ErrorNotFound without touching anything.
func (s *EventService) CloseEvent(ctx context.Context, eventID string) (*ClosedEvent, error) {
	in := closeEventInput{EventID: strings.TrimSpace(eventID)}
	if err := validate.Struct(in); err != nil {
		return nil, common.NewError(common.ErrorValidation, msgEventIDRequired, nil)
	}
	parsed, err := uuid.Parse(in.EventID)
	if err != nil {
		return nil, common.NewError(common.ErrorNotFound, msgEventNotFound, nil)
	}
	// urn and braced forms reach the datastore in canonical form
	id := parsed.String()

	sg := newSaga(s.logger, s.metrics)
	repo := s.repomanager.Events(s.db)

	if _, err := repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgEventNotFound, nil)
		}
		return nil, common.NewError(common.ErrorUpstream, "load event", err)
	}

	count, err := s.repomanager.Uploads(s.db).CountByEvent(ctx, id)
	if err != nil {
		sg.warn(ctx, StepCountUploads, id, err)
		count = 0
	}

	event, err := repo.Deactivate(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorNotFound, msgEventNotFound, nil)
		}
		return nil, sg.fail(common.NewError(common.ErrorUpstream, "close event", err))
	}

	s.logger.Info(ctx, "event closed", "event_id", event.ID, "uploads", count)
	return &ClosedEvent{
		Event:        event,
		UploadsCount: count,
		ClosedAt:     s.now(),
		Warnings:     sg.warnings,
	}, nil
}

// ListEvents returns every event, newest first, with upload counts.
func (s *EventService) ListEvents(ctx context.Context) (*EventList, error) {
	events, err := s.repomanager.Events(s.db).ListWithUploadCounts(ctx)
	if err != nil {
		return nil, common.NewError(common.ErrorUpstream, "list events", err)
	}

	active := 0
	for _, e := range events {
		if e.Active {
			active++
		}
	}

	return &EventList{Events: events, Total: len(events), ActiveEvents: active}, nil
}

// QuotaReport reads the storage usage and derives the available bytes and
// the usage percentage (0 when the limit is unknown).
func (s *EventService) QuotaReport(ctx context.Context) (*QuotaReport, error) {
	q, err := s.storage.Quota(ctx)
	if err != nil {
		return nil, common.NewError(common.ErrorUpstream, "storage quota", err)
	}

	return &QuotaReport{
		Limit:           q.Limit,
		Usage:           q.Usage,
		UsageInDrive:    q.UsageInDrive,
		UsageInTrash:    q.UsageInTrash,
		Available:       q.Limit - q.Usage,
		UsagePercentage: usagePercentage(q.Usage, q.Limit),
		Timestamp:       s.now(),
	}, nil
}

func usagePercentage(usage, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Round(float64(usage)/float64(limit)*100*100) / 100
}
