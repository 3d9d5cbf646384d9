// Package config loads eventctl settings: defaults, an optional JSON file
// (-c / -config), EVENTDROP_* environment variables and command-line flags,
// later sources taking precedence.
package config
