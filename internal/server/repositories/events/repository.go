package events

import (
	"context"

	"github.com/dmitrijs2005/eventdrop/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetActive(ctx context.Context) (*models.Event, error)
	DeactivateAll(ctx context.Context) (int64, error)
	Deactivate(ctx context.Context, id string) (*models.Event, error)
	ListWithUploadCounts(ctx context.Context) ([]*models.EventSummary, error)
}
