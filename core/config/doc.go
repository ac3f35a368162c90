// Package config provides configuration management for shopsync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Log: Logging level and format
//   - Database: host inventory database connection details
//   - Storage: S3/MinIO credentials for the report archive
//   - Shopify: shop domain, Admin API token, protocol and rate-limit knobs
//   - Sync: reconciliation policy (target location, delta guard, dry run, ...)
//
// Defaults come from the `default` struct tags; environment variables use
// SECTION_KEY naming (e.g. SHOPIFY_DOMAIN, SYNC_DRY_RUN).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Shopify.Domain)
package config
