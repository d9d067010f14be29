// Package insights holds the pure spend-analysis routines behind the API:
// keyword categorization, spend buckets, archetype assignment, aggregation,
// the financial profile, cursor pagination, position reconciliation and
// goal risk. Nothing here performs I/O or keeps state between calls.
package insights
