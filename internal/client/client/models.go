package client

import "time"

type Warning struct {
	Step    string `json:"step"`
	Subject string `json:"subject,omitempty"`
	Details string `json:"details,omitempty"`
}

type Event struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	DriveFolderID string     `json:"driveFolderId"`
	Active        bool       `json:"active"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UploadsCount  *int64     `json:"uploadsCount,omitempty"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
}

// EventResponse is returned by create-event and close-event.
type EventResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Event    Event     `json:"event"`
	Warnings []Warning `json:"warnings,omitempty"`
}

type EventList struct {
	Success      bool    `json:"success"`
	Events       []Event `json:"events"`
	Total        int     `json:"total"`
	ActiveEvents int     `json:"activeEvents"`
}

type ByteCount struct {
	Bytes     int64  `json:"bytes"`
	Formatted string `json:"formatted"`
}

type Quota struct {
	Limit ByteCount `json:"limit"`
	Usage struct {
		Total ByteCount `json:"total"`
		Drive ByteCount `json:"drive"`
		Trash ByteCount `json:"trash"`
	} `json:"usage"`
	Available       ByteCount `json:"available"`
	UsagePercentage float64   `json:"usagePercentage"`
}

type QuotaResponse struct {
	Success   bool      `json:"success"`
	Quota     Quota     `json:"quota"`
	Timestamp time.Time `json:"timestamp"`
}

type UploadedFile struct {
	ID           string `json:"id"`
	OriginalName string `json:"originalName"`
	DriveLink    string `json:"driveLink"`
	Size         int64  `json:"size"`
}

type UploadResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Files    []UploadedFile `json:"files"`
	Event    string         `json:"event"`
	Warnings []Warning      `json:"warnings,omitempty"`
}
