// Package config provides configuration management for the reconciler.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, body limit)
//   - Database: staging database connection (SQLite or MySQL)
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Compare: rule book sheets, special field names, input layout, cache and report options
//
// Nested keys map to upper-case environment variables joined by underscores, so
// compare.category_prefix_width is read from COMPARE_CATEGORY_PREFIX_WIDTH.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Compare.RulesObject)
package config
