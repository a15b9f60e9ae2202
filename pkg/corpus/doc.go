// Package corpus owns the read-only document set the pipeline retrieves from.
//
// Documents are loaded once at startup (or on an explicit reload) and held in
// an immutable Snapshot. The Store swaps snapshots atomically so in-flight
// requests always observe a consistent view: a request captures the snapshot
// at entry and uses it for retrieval, scoring, and validation without ever
// seeing a half-reloaded corpus.
package corpus
