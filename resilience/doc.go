// Package resilience holds the fault-isolation primitives used by the
// clinic service: a circuit breaker and bulkhead around notification
// publishing, retry with backoff for the Kafka producer, and token-bucket
// limiters for login throttling.
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "notify", MaxFailures: 5})
//	bh := resilience.NewBulkhead(16)
//
//	bh.Go(func() {
//	    _ = cb.Execute(func() error { return publish(ctx) })
//	})
package resilience
