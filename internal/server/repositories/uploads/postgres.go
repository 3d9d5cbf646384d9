package uploads

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/eventdrop/internal/dbx"
	"github.com/dmitrijs2005/eventdrop/internal/server/models"
)

// PostgresRepository implements upload metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an upload record and fills in the generated id and created_at.
func (r *PostgresRepository) Create(ctx context.Context, upload *models.Upload) (*models.Upload, error) {
	query := `
		INSERT INTO uploads (event_id, original_name, stored_name, guest_name, drive_file_id, drive_link, mime_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		upload.EventID, upload.OriginalName, upload.StoredName, upload.GuestName,
		upload.DriveFileID, upload.DriveLink, upload.MimeType, upload.SizeBytes).
		Scan(&upload.ID, &upload.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return upload, nil
}

// CountByEvent returns the number of uploads recorded for eventID.
func (r *PostgresRepository) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads WHERE event_id = $1`, eventID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return n, nil
}
