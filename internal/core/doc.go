// Package core holds the stock-keeping domain: the batch import parser, the
// reconciliation engine and the service used by the web layer and the CLI.
//
// It has no knowledge of HTTP. Persistence is reached through the [Store],
// [Catalog] and [ImportRunStore] interfaces, implemented by [PostgresStore]
// for production and [MemoryStore] for previews and tests.
//
// # Batch Import
//
// An import is plain text, one product per line:
//
//	7891000100103;Leite Integral 1L;12
//	7891000100103;Leite Integral 1L;-2
//	7896004000015;Arroz 5kg;30
//
// [ParseBatch] splits the text into [ImportRow] values. Lines without
// exactly three fields, with an empty field or with a non-integer quantity
// are marked malformed and never reach the store. Blank lines are skipped
// but still count toward line numbers.
//
// [Engine.Reconcile] then looks each barcode up. A known barcode has the
// line's quantity added to its stock; an unknown one is inserted with that
// quantity. Lines sharing a barcode are applied in input order, and
// distinct barcodes are applied concurrently. The result is a single
// [ImportSummary] with inserted, updated, malformed and failed counts plus
// one [LineError] per rejected line.
//
// Imports are not idempotent: running the same batch twice doubles the
// quantities it adds.
//
// # Concurrency
//
// [Service.ImportBatch] holds an [ImportLimiter] slot for the whole batch
// and bounds it with the configured timeout. When the deadline hits, rows
// not yet attempted are reported as failed and the summary is marked
// interrupted.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - DB001-DB007: database errors (duplicates, connections, timeouts)
//   - PRD001-PRD003: product errors
//   - IMP001-IMP006: import errors
//   - AUTH001-AUTH003: authentication errors
package core
