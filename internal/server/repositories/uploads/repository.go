package uploads

import (
	"context"

	"github.com/dmitrijs2005/eventdrop/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, upload *models.Upload) (*models.Upload, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}
