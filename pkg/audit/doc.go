// Package audit records per-query authorization decisions as Parquet files.
// Records carry metadata only: queries, roles and per-document decisions, but
// never document content. Writes are buffered and flushed in batches.
package audit
