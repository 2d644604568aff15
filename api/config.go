// Package api provides an HTTP status server for inspecting a running bot:
// health, pipeline counters and the reply ledger.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string
}
