// Package server provides the HTTP server of the clinic API: Gin behind
// CORS and body-size limits, served over HTTP/1.1 and h2c, run as a
// lifecycle component.
//
// Request middleware lives in server/middleware (recovery, request id,
// tracing, prometheus metrics, request logging, bearer authentication,
// login throttling). The operational endpoints /health, /info and /metrics
// live in server/endpoint.
package server
