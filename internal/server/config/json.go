package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eventdrop/internal/flagx"
	"github.com/dmitrijs2005/eventdrop/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Pointer fields distinguish "absent" from a zero value.
type JsonConfig struct {
	HTTPAddr           string          `json:"http_addr"`
	DatabaseDSN        string          `json:"database_dsn"`
	AdminPassword      string          `json:"admin_password"`
	LogLevel           string          `json:"log_level"`
	StorageDriver      string          `json:"storage_driver"`
	S3RootUser         string          `json:"s3_root_user"`
	S3RootPassword     string          `json:"s3_root_password"`
	S3Bucket           string          `json:"s3_bucket"`
	S3Region           string          `json:"s3_region"`
	S3BaseEndpoint     string          `json:"s3_base_endpoint"`
	S3ObjectACL        *string         `json:"s3_object_acl"`
	StorageRootFolder  string          `json:"storage_root_folder"`
	StorageTrashFolder string          `json:"storage_trash_folder"`
	StorageLimit       string          `json:"storage_limit"`
	LocalStorageDir    string          `json:"local_storage_dir"`
	PublicBaseURL      string          `json:"public_base_url"`
	MaxFileSize        string          `json:"max_file_size"`
	TempDir            string          `json:"temp_dir"`
	UploadWorkers      *int            `json:"upload_workers"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
	RedactErrorDetails *bool           `json:"redact_error_details"`
}

// parseJson overlays values from the file named by -c / -config.
// Keys missing from the file leave the current value untouched.
// An unreadable file or invalid JSON panics: the server must not start
// with a half-applied configuration.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(b, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.S3ObjectACL != nil {
		config.S3ObjectACL = *c.S3ObjectACL
	}
	setString(&config.StorageRootFolder, c.StorageRootFolder)
	setString(&config.StorageTrashFolder, c.StorageTrashFolder)
	setString(&config.StorageLimit, c.StorageLimit)
	setString(&config.LocalStorageDir, c.LocalStorageDir)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.MaxFileSize, c.MaxFileSize)
	setString(&config.TempDir, c.TempDir)

	if c.UploadWorkers != nil {
		config.UploadWorkers = *c.UploadWorkers
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.RedactErrorDetails != nil {
		config.RedactErrorDetails = *c.RedactErrorDetails
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
