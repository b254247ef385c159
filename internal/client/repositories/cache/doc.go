// Package cache provides persistence for the client's response cache.
//
// Each row stores an opaque JSON payload together with the wall-clock time it
// was written (unix milliseconds) and the TTL that applied at write time.
// Freshness is decided by the caller; the repository never filters on time.
//
// Operations
//
//   - Get(ctx, key): returns the entry or (nil, nil) when absent.
//   - Upsert(ctx, entry): inserts or replaces the entry for entry.Key.
//   - Delete(ctx, key): removes one entry; deleting a missing key is not an error.
//   - DeletePrefix(ctx, prefix): removes every entry whose key starts with prefix.
//   - Clear(ctx): removes all entries and reports how many were dropped.
//   - Keys(ctx): lists stored keys in lexical order.
//
// The implementation accepts dbx.DBTX so it can run inside a transaction
// opened with dbx.WithTx.
package cache
