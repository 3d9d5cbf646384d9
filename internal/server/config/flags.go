package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/eventdrop/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   admin shared secret
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-f string   storage root folder
//	-m string   per-file size cap (e.g., "50MiB")
//	-w int      upload workers per request
//	-storage string      storage driver: s3 | local
//	-public-url string   base URL for public links
//	-log-level string    debug | info | warn | error
//
// Only the flags listed here are picked out of os.Args (flagx.FilterArgs),
// so -c / -config and foreign flags do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-f", "-m", "-w",
		"-storage", "-public-url", "-log-level",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AdminPassword, "s", config.AdminPassword, "admin shared secret")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.StorageRootFolder, "f", config.StorageRootFolder, "storage root folder")
	fs.StringVar(&config.MaxFileSize, "m", config.MaxFileSize, "max size per uploaded file")
	fs.IntVar(&config.UploadWorkers, "w", config.UploadWorkers, "files processed concurrently per upload request")
	fs.StringVar(&config.StorageDriver, "storage", config.StorageDriver, "storage driver (s3|local)")
	fs.StringVar(&config.PublicBaseURL, "public-url", config.PublicBaseURL, "base URL for public links")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
