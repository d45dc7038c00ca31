// Package redis wraps go-redis with the service's logging, configuration
// and component lifecycle. The credential store keeps sessions here.
//
//	redis:
//	  enabled: true
//	  addr: "localhost:6379"
//
// TypedStore stores JSON values under a key prefix:
//
//	store := redis.NewTypedStore[session.Record](client, "session")
//	err := store.Create(ctx, key, &rec, time.Hour) // SET NX with expiry
//	rec, err := store.Load(ctx, key)               // nil, nil on miss
package redis
