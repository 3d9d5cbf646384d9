package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/server/services"
)

const (
	msgMethodNotAllowed = "Método não permitido"
	msgAccessDenied     = "Acesso negado"
	msgInternalError    = "Erro interno do servidor"
	msgRouteNotFound    = "Rota não encontrada"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error    string        `json:"error"`
	Details  string        `json:"details,omitempty"`
	Warnings []WarningView `json:"warnings,omitempty"`
}

// RespondWithJSON sends payload with the given status code.
func (a *API) RespondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error(r.Context(), "marshal response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"` + msgInternalError + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// RespondWithError sends {error: message}.
func (a *API) RespondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	a.RespondWithJSON(w, r, code, ErrorResponse{Error: message})
}

// statusFor maps an error kind to the HTTP status code.
func statusFor(err error) int {
	kind := err
	var appErr *common.Error
	if errors.As(err, &appErr) {
		kind = appErr.Kind
	}

	switch {
	case errors.Is(kind, common.ErrorValidation),
		errors.Is(kind, common.ErrorFileTooLarge),
		errors.Is(kind, common.ErrorNoActiveEvent):
		return http.StatusBadRequest
	case errors.Is(kind, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(kind, common.ErrorMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Client errors carry their message; anything else
// is a 500 with the cause in details unless details are redacted.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)

	var appErr *common.Error
	hasAppErr := errors.As(err, &appErr)

	resp := ErrorResponse{}
	if code == http.StatusInternalServerError {
		a.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		resp.Error = msgInternalError
		if !a.redact {
			resp.Details = err.Error()
			if hasAppErr && appErr.Details() != "" {
				resp.Details = appErr.Details()
			}
		}
	} else {
		a.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", code, "error", err)
		resp.Error = err.Error()
		if hasAppErr {
			resp.Error = appErr.Message
		}
	}

	var stepErr *services.StepError
	if errors.As(err, &stepErr) {
		resp.Warnings = a.warningViews(stepErr.Warnings)
	}

	a.RespondWithJSON(w, r, code, resp)
}
