// Package events stores Event rows in PostgreSQL.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/dbx"
	"github.com/dmitrijs2005/eventdrop/internal/server/models"
)

const eventColumns = `id, name, drive_folder_id, active, created_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	e := &models.Event{}
	if err := row.Scan(&e.ID, &e.Name, &e.DriveFolderID, &e.Active, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts the event and fills in the generated id and created_at.
func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (name, drive_folder_id, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, event.Name, event.DriveFolderID, event.Active).
		Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return event, nil
}

// GetByID returns common.ErrorNotFound when no row matches.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// GetActive returns the single active event, common.ErrorNotFound when there
// is none and common.ErrorMultipleActive when the invariant is broken.
func (r *PostgresRepository) GetActive(ctx context.Context) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE active = true LIMIT 2`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select active event: %w", err)
	}
	defer rows.Close()

	var found []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
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

// DeactivateAll clears the active flag everywhere and reports how many rows changed.
func (r *PostgresRepository) DeactivateAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET active = false WHERE active = true`)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Deactivate marks one event inactive and returns the updated row.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) (*models.Event, error) {
	query := `UPDATE events SET active = false WHERE id = $1 RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to deactivate event: %w", err)
	}
	return e, nil
}

// ListWithUploadCounts returns every event, newest first, with its upload count.
func (r *PostgresRepository) ListWithUploadCounts(ctx context.Context) ([]*models.EventSummary, error) {
	query := `
		SELECT e.id, e.name, e.drive_folder_id, e.active, e.created_at, COUNT(u.id)
		FROM events e
		LEFT JOIN uploads u ON u.event_id = e.id
		GROUP BY e.id
		ORDER BY e.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	result := []*models.EventSummary{}
	for rows.Next() {
		var item models.EventSummary
		if err := rows.Scan(&item.ID, &item.Name, &item.DriveFolderID, &item.Active, &item.CreatedAt, &item.UploadsCount); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
