// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. It provides typed
// access to the settings used by the bot, the dashboard API, the OCR queue and
// the reconciliation job.
package config
