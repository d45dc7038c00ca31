// Package util holds small parsing and redaction helpers shared by the
// config, logging and middleware code.
package util
