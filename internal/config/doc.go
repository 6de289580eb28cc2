// Package config assembles the application configuration from three layers:
// compiled defaults, an optional YAML file, and AGENTSUMMARY_* environment
// variables, in increasing precedence. The analytics block carries the
// qualification thresholds, ordinal scale edges, and risk cutoffs consumed
// by internal/analytics; everything else configures the serving surface
// (HTTP server, rate limiting, logging, WebSocket).
package config
