// Package security holds the TLS settings used by the HTTP server and the
// Redis and Kafka clients.
//
//	clientTLS, err := cfg.Redis.TLS.Build()
//	serverTLS, err := cfg.Server.TLS.BuildServer()
//
// Both return nil when the section is disabled.
package security
