// Package app wires the analytics service together: configuration, logging,
// observability, the dataset loader, the analysis services, the WebSocket
// hub, and the HTTP server with its middleware chain.
//
// The initialization sequence:
//
//	1. Load configuration from defaults, YAML, and environment
//	2. Initialize structured logging and OpenTelemetry
//	3. Build the analytics pipeline and the analysis service
//	4. Start the WebSocket hub
//	5. Assemble the router and HTTP server
//	6. Serve until an interrupt, then shut down gracefully
package app
