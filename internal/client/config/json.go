package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eventdrop/internal/flagx"
	"github.com/dmitrijs2005/eventdrop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Timeout
// accepts "30s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL     string          `json:"server_url"`
	AdminPassword string          `json:"admin_password"`
	MaxFileSize   string          `json:"max_file_size"`
	Timeout       *timex.Duration `json:"timeout"`
}

// parseJson overlays cfg with the file named by -c / -config. Keys missing
// from the file keep their current value. Read or decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.AdminPassword != "" {
		cfg.AdminPassword = jc.AdminPassword
	}
	if jc.MaxFileSize != "" {
		cfg.MaxFileSize = jc.MaxFileSize
	}
	if jc.Timeout != nil {
		cfg.Timeout = jc.Timeout.Duration
	}
}
