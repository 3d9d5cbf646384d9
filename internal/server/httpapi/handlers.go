package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dmitrijs2005/eventdrop/internal/server/staging"
)

const maxJSONBody = 1 << 20

type createEventRequest struct {
	EventName string `json:"eventName"`
}

type closeEventRequest struct {
	EventID string `json:"eventId"`
}

// decodeJSON reads a small JSON body into dst. A missing or malformed body
// leaves dst zero-valued so the services report the missing field.
func (a *API) decodeJSON(r *http.Request, dst any) {
	body := io.LimitReader(r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil && err != io.EOF {
		a.logger.Debug(r.Context(), "malformed json body", "path", r.URL.Path, "error", err)
	}
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	a.decodeJSON(r, &req)

	res, err := a.events.CreateEvent(r.Context(), req.EventName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	view := eventView(res.Event)
	view.CreatedAt = &res.Event.CreatedAt

	a.RespondWithJSON(w, r, http.StatusCreated, CreateEventResponse{
		Success:  true,
		Message:  "Evento criado com sucesso",
		Event:    view,
		Warnings: a.warningViews(res.Warnings),
	})
}

func (a *API) closeEvent(w http.ResponseWriter, r *http.Request) {
	var req closeEventRequest
	a.decodeJSON(r, &req)

	res, err := a.events.CloseEvent(r.Context(), req.EventID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	view := eventView(res.Event)
	view.UploadsCount = &res.UploadsCount
	view.ClosedAt = &res.ClosedAt

	a.RespondWithJSON(w, r, http.StatusOK, CloseEventResponse{
		Success:  true,
		Message:  "Evento encerrado com sucesso",
		Event:    view,
		Warnings: a.warningViews(res.Warnings),
	})
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	list, err := a.events.ListEvents(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	views := make([]EventView, 0, len(list.Events))
	for _, e := range list.Events {
		v := eventView(&e.Event)
		v.CreatedAt = &e.CreatedAt
		v.UploadsCount = &e.UploadsCount
		views = append(views, v)
	}

	a.RespondWithJSON(w, r, http.StatusOK, ListEventsResponse{
		Success:      true,
		Events:       views,
		Total:        list.Total,
		ActiveEvents: list.ActiveEvents,
	})
}

func (a *API) driveQuota(w http.ResponseWriter, r *http.Request) {
	q, err := a.events.QuotaReport(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.RespondWithJSON(w, r, http.StatusOK, QuotaResponse{
		Success:   true,
		Quota:     quotaView(q),
		Timestamp: q.Timestamp.UTC(),
	})
}

// upload resolves the active event before reading the body, so a request
// without an active event is rejected without spooling anything.
func (a *API) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	event, err := a.uploads.ResolveActiveEvent(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	form, err := a.spooler.Spool(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	defer a.cleanup(r, form)

	res, err := a.uploads.Upload(ctx, event, form)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	files := make([]UploadedFileView, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, UploadedFileView{
			ID:           f.ID,
			OriginalName: f.OriginalName,
			DriveLink:    f.DriveLink,
			Size:         f.SizeBytes,
		})
	}

	a.RespondWithJSON(w, r, http.StatusOK, UploadResponse{
		Success:  true,
		Message:  res.Message,
		Files:    files,
		Event:    res.Event,
		Warnings: a.warningViews(res.Warnings),
	})
}

func (a *API) cleanup(r *http.Request, form *staging.Form) {
	if err := form.Cleanup(); err != nil {
		a.logger.Warn(r.Context(), "staged files not removed", "error", err)
	}
}
