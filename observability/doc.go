// Package observability installs the OpenTelemetry tracer and meter
// providers for the clinic service.
//
// Packages instrument themselves against the global providers, which are
// no-ops until the component starts:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  insecure: true
//	  sample_rate: 0.25
package observability
