// Package models defines server-side data models persisted in the database.
package models

import "time"

// Event is an admin-defined collection window. At most one event is active;
// new uploads land in the active event's storage folder.
type Event struct {
	ID            string
	Name          string
	DriveFolderID string
	Active        bool
	CreatedAt     time.Time
}

// EventSummary is an Event annotated with its number of uploads.
type EventSummary struct {
	Event
	UploadsCount int64
}
