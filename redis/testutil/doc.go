// Package testutil starts an in-memory redis (miniredis) for tests and
// returns a connected client.
package testutil
