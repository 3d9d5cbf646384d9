// Package httpapi is the HTTP surface of the server: routing, CORS, the
// admin guard and the JSON handlers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/logging"
	"github.com/dmitrijs2005/eventdrop/internal/server/models"
	"github.com/dmitrijs2005/eventdrop/internal/server/services"
	"github.com/dmitrijs2005/eventdrop/internal/server/staging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type EventService interface {
	CreateEvent(ctx context.Context, name string) (*services.CreatedEvent, error)
	CloseEvent(ctx context.Context, eventID string) (*services.ClosedEvent, error)
	ListEvents(ctx context.Context) (*services.EventList, error)
	QuotaReport(ctx context.Context) (*services.QuotaReport, error)
}

type UploadService interface {
	ResolveActiveEvent(ctx context.Context) (*models.Event, error)
	Upload(ctx context.Context, event *models.Event, form *staging.Form) (*services.UploadResult, error)
}

type Spooler interface {
	Spool(r *http.Request) (*staging.Form, error)
}

// RequestObserver records one finished request; *metrics.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(route, method string, code int, d time.Duration)
}

type Options struct {
	AdminPassword      string
	RedactErrorDetails bool
	// Ping backs GET /health. Nil reports healthy.
	Ping func(ctx context.Context) error
	// Metrics serves GET /metrics. Nil leaves the route out.
	Metrics http.Handler
}

type API struct {
	events   EventService
	uploads  UploadService
	spooler  Spooler
	observer RequestObserver
	logger   logging.Logger

	adminPassword string
	redact        bool
	ping          func(ctx context.Context) error
	metrics       http.Handler
}

func New(events EventService, uploads UploadService, spooler Spooler, observer RequestObserver, logger logging.Logger, opts Options) *API {
	return &API{
		events:        events,
		uploads:       uploads,
		spooler:       spooler,
		observer:      observer,
		logger:        logger.With("module", "http"),
		adminPassword: opts.AdminPassword,
		redact:        opts.RedactErrorDetails,
		ping:          opts.Ping,
		metrics:       opts.Metrics,
	}
}

// Handler builds the full handler chain. Every route is served both at the
// root and under /api.
func (a *API) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(a.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(a.methodNotAllowed)
	r.Use(a.observe)

	r.HandleFunc("/health", a.health).Methods(http.MethodGet)
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics).Methods(http.MethodGet)
	}

	a.mount(r.PathPrefix("/api").Subrouter())
	a.mount(r)

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"Content-Type", common.AdminPasswordHeaderName},
		OptionsSuccessStatus: http.StatusOK,
	})

	return a.recoverer(a.logRequests(c.Handler(optionsOK(r))))
}

// mount registers the routes flat on r. Admin routes are wrapped one by one
// so a wrong method on them still reaches the 405 handler of r.
func (a *API) mount(r *mux.Router) {
	r.MethodNotAllowedHandler = http.HandlerFunc(a.methodNotAllowed)

	r.Handle("/admin/create-event", a.requireAdmin(http.HandlerFunc(a.createEvent))).Methods(http.MethodPost)
	r.Handle("/admin/close-event", a.requireAdmin(http.HandlerFunc(a.closeEvent))).Methods(http.MethodPost)
	r.Handle("/admin/list-events", a.requireAdmin(http.HandlerFunc(a.listEvents))).Methods(http.MethodGet)
	r.Handle("/admin/drive-quota", a.requireAdmin(http.HandlerFunc(a.driveQuota))).Methods(http.MethodGet)

	r.HandleFunc("/upload", a.upload).Methods(http.MethodPost)
}

func (a *API) notFound(w http.ResponseWriter, r *http.Request) {
	a.RespondWithError(w, r, http.StatusNotFound, msgRouteNotFound)
}

func (a *API) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.RespondWithError(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if a.ping != nil {
		if err := a.ping(r.Context()); err != nil {
			a.logger.Warn(r.Context(), "health check failed", "error", err)
			a.RespondWithJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	a.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
