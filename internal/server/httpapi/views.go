package httpapi

import (
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/server/models"
	"github.com/dmitrijs2005/eventdrop/internal/server/services"
	"github.com/dmitrijs2005/eventdrop/internal/sizex"
)

// JSON shapes of the responses. Field names follow the public API.

type WarningView struct {
	Step    string `json:"step"`
	Subject string `json:"subject,omitempty"`
	Details string `json:"details,omitempty"`
}

type EventView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	DriveFolderID string     `json:"driveFolderId"`
	Active        bool       `json:"active"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UploadsCount  *int64     `json:"uploadsCount,omitempty"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
}

type CreateEventResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
	Event    EventView     `json:"event"`
	Warnings []WarningView `json:"warnings,omitempty"`
}

type CloseEventResponse = CreateEventResponse

type ListEventsResponse struct {
	Success      bool        `json:"success"`
	Events       []EventView `json:"events"`
	Total        int         `json:"total"`
	ActiveEvents int         `json:"activeEvents"`
}

type ByteCount struct {
	Bytes     int64  `json:"bytes"`
	Formatted string `json:"formatted"`
}

func byteCount(n int64) ByteCount {
	return ByteCount{Bytes: n, Formatted: sizex.FormatBytes(n)}
}

type QuotaUsage struct {
	Total ByteCount `json:"total"`
	Drive ByteCount `json:"drive"`
	Trash ByteCount `json:"trash"`
}

type QuotaView struct {
	Limit           ByteCount  `json:"limit"`
	Usage           QuotaUsage `json:"usage"`
	Available       ByteCount  `json:"available"`
	UsagePercentage float64    `json:"usagePercentage"`
}

type QuotaResponse struct {
	Success   bool      `json:"success"`
	Quota     QuotaView `json:"quota"`
	Timestamp time.Time `json:"timestamp"`
}

type UploadedFileView struct {
	ID           string `json:"id"`
	OriginalName string `json:"originalName"`
	DriveLink    string `json:"driveLink"`
	Size         int64  `json:"size"`
}

type UploadResponse struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	Files    []UploadedFileView `json:"files"`
	Event    string             `json:"event"`
	Warnings []WarningView      `json:"warnings,omitempty"`
}

func eventView(e *models.Event) EventView {
	return EventView{
		ID:            e.ID,
		Name:          e.Name,
		DriveFolderID: e.DriveFolderID,
		Active:        e.Active,
	}
}

func (a *API) warningViews(ws []services.Warning) []WarningView {
	if len(ws) == 0 {
		return nil
	}
	out := make([]WarningView, 0, len(ws))
	for _, w := range ws {
		v := WarningView{Step: w.Step, Subject: w.Subject}
		if w.Err != nil && !a.redact {
			v.Details = w.Err.Error()
		}
		out = append(out, v)
	}
	return out
}

func quotaView(q *services.QuotaReport) QuotaView {
	return QuotaView{
		Limit: byteCount(q.Limit),
		Usage: QuotaUsage{
			Total: byteCount(q.Usage),
			Drive: byteCount(q.UsageInDrive),
			Trash: byteCount(q.UsageInTrash),
		},
		Available:       byteCount(q.Available),
		UsagePercentage: q.UsagePercentage,
	}
}
