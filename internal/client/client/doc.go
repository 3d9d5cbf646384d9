// Package client is the HTTP client of the eventdrop API used by eventctl.
//
// Admin calls send the configured password in the x-admin-pass header.
// Non-2xx responses are returned as *APIError, which unwraps to the matching
// common error kind (401 to ErrorUnauthorized, 404 to ErrorNotFound, ...).
package client
