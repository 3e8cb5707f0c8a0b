// Package config loads application configuration from YAML files,
// .env files, and environment variables, in that order of precedence
// (environment wins).
//
// Load resolves the files automatically from standard locations, or the
// caller can pin them with WithConfigFile / WithEnvFile. Every section
// carries ApplyDefaults and Validate, applied as one pass over the whole
// Config.
package config
