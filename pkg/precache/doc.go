// Package precache provides the precached shell document store with a Redis
// backend.
//
// The precache holds the application shell (HTML document) ahead of time,
// keyed by canonical document key rather than fetched live. Entries carry the
// ETag of the deployed shell so the resolver can compare freshness against a
// network candidate without transferring bodies.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create precache manager
//	manager := precache.NewManager(redisClient)
//
//	// Canonical document key
//	key := precache.DocumentKey("app.example.com", "/index.html")
//
//	// Get from the precache
//	entry, err := manager.Get(ctx, key)
//	if err == precache.ErrNotPrecached {
//		// No shell precached for this key
//	}
//
// # Storing a deployed shell
//
//	entry, err := precache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//	if err := manager.Put(ctx, key, entry); err != nil {
//		return err
//	}
//
// Entries have no TTL: the shell stays precached until the next deployment
// replaces or deletes it. Population and versioning policy live outside this
// package; Put and Delete are the primitives only.
//
// # Resolver wiring
//
// NewStore adapts a Manager to the resolver's PrecacheStore contract. Store
// infrastructure errors are logged and reported as a miss, so resolution
// degrades to the network candidate instead of failing the navigation.
// MemoryStore is an in-process alternative for tests and single-instance
// deployments.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - shell_precache_hits_total - Precache hits
//   - shell_precache_misses_total - Precache misses
//   - shell_precache_errors_total{operation} - Store operation errors
package precache
