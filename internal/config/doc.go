// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config.yaml. It provides
// type-safe access to settings for the HTTP server, the selected store
// backend, the optional Redis cache and the validation rules, while keeping
// configuration details separate from business logic.
package config
