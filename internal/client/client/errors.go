package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/eventdrop/internal/common"
)

// APIError is a non-2xx response.
type APIError struct {
	Status   int
	Message  string
	Details  string
	Warnings []Warning
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrorValidation
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusMethodNotAllowed:
		return common.ErrorMethodNotAllowed
	default:
		return common.ErrorUpstream
	}
}

// readAPIError decodes the {error, details, warnings} body. A body that is
// not JSON becomes the message as is.
func readAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error    string    `json:"error"`
		Details  string    `json:"details"`
		Warnings []Warning `json:"warnings"`
	}
	if err := json.Unmarshal(b, &body); err != nil || body.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: string(b)}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error, Details: body.Details, Warnings: body.Warnings}
}
