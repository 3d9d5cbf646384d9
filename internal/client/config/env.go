package config

import "os"

// parseEnv reads EVENTDROP_SERVER_URL, EVENTDROP_ADMIN_PASSWORD and
// EVENTDROP_MAX_FILE_SIZE. These are the names the server uses too, so one
// .env can serve both.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("EVENTDROP_SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("EVENTDROP_ADMIN_PASSWORD"); ok {
		cfg.AdminPassword = v
	}
	if v, ok := os.LookupEnv("EVENTDROP_MAX_FILE_SIZE"); ok {
		cfg.MaxFileSize = v
	}
}
