package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/eventdrop/internal/dbx"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/events"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/uploads"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Events(db dbx.DBTX) events.Repository
	Uploads(db dbx.DBTX) uploads.Repository
}
