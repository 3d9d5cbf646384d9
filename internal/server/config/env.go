package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix namespaces every variable read by parseEnv.
const envPrefix = "EVENTDROP_"

// dotenvFile is loaded (without overriding the real environment) if present.
var dotenvFile = ".env"

// parseEnv overlays EVENTDROP_* environment variables. A .env file in the
// working directory is loaded first when it exists. ADMIN_PASSWORD is
// accepted as an alias for EVENTDROP_ADMIN_PASSWORD.
func parseEnv(config *Config) {
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			panic(err)
		}
	}

	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	if v, ok := os.LookupEnv("ADMIN_PASSWORD"); ok {
		config.AdminPassword = v
	}
	envString(&config.AdminPassword, "ADMIN_PASSWORD")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.StorageDriver, "STORAGE_DRIVER")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3ObjectACL, "S3_OBJECT_ACL")
	envString(&config.StorageRootFolder, "STORAGE_ROOT_FOLDER")
	envString(&config.StorageTrashFolder, "STORAGE_TRASH_FOLDER")
	envString(&config.StorageLimit, "STORAGE_LIMIT")
	envString(&config.LocalStorageDir, "LOCAL_STORAGE_DIR")
	envString(&config.PublicBaseURL, "PUBLIC_BASE_URL")
	envString(&config.MaxFileSize, "MAX_FILE_SIZE")
	envString(&config.TempDir, "TEMP_DIR")

	if v, ok := os.LookupEnv(envPrefix + "UPLOAD_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.UploadWorkers = n
	}
	if v, ok := os.LookupEnv(envPrefix + "SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
	if v, ok := os.LookupEnv(envPrefix + "REDACT_ERROR_DETAILS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.RedactErrorDetails = b
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}
