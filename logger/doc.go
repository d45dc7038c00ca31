// Package logger provides structured zerolog logging for the clinic service.
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// Components derive tagged loggers with WithComponent and enrich them per
// request with WithContext, which picks up the request id set by the HTTP
// middleware.
package logger
