// Package notify publishes domain events when appointments and
// prescriptions are created.
//
// Publishing is best-effort. Events are sent in the background through a
// bulkhead and a circuit breaker, failures are logged, and the request that
// triggered the event never sees them. When Kafka is disabled the LogNotifier
// writes events to the log instead.
package notify
