package models

import "time"

// Upload links one guest-submitted file to its event and storage location.
// Rows are written once and never updated.
type Upload struct {
	ID           string
	EventID      string
	OriginalName string
	// StoredName is the timestamp-prefixed name the file was stored under.
	StoredName  string
	GuestName   string
	DriveFileID string
	DriveLink   string
	MimeType    string
	SizeBytes   int64
	CreatedAt   time.Time
}
