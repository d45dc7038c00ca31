// Package component defines the lifecycle contract shared by the clinic's
// infrastructure pieces (database, redis, credential store, kafka, HTTP
// server, telemetry) and a registry that starts them in order and stops
// them in reverse.
package component
