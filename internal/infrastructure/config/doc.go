// Package config provides configuration management for the file server.
//
// Configuration sources, in increasing priority:
//   - Built-in defaults
//   - Environment variables (12-factor)
//   - A config file passed with -config (TOML, or YAML for .yaml/.yml)
//
// Environment Variables:
//
//	HOST, PORT                       listen address (default 127.0.0.1:3030)
//	READ_HEADER_TIMEOUT, IDLE_TIMEOUT
//	COMPRESSION_ENABLED              gzip responses (default true)
//	STORAGE_BASE_DIR                 directory all operations are confined to
//	STORAGE_UPLOAD_LIMIT             request body ceiling in bytes (default 50 GiB)
//	STORAGE_MAX_NAME_ATTEMPTS        bound for collision-free naming
//	STORAGE_CONFINE_SYMLINKS         reject paths resolving outside the base dir
//	LOG_LEVEL, LOG_DEV
//	RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//
// Config File:
//
//	serve_path = "/srv/files"
//	upload_limit = 53687091200
//
//	[server]
//	port = "3030"
//
// Example Usage:
//
//	cfg, err := config.LoadFile("restore.toml")
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
