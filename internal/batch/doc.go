// Package batch drains queues of search keys through the lookup service with
// a bounded worker pool.
//
// Queues are assembled from raw names or native identifiers, validated, and
// deduplicated by search key. A Runner pre-filters keys that already have a
// fresh cache entry, resolves the rest concurrently, and reports counts per
// outcome. A lock file keeps two runs against the same cache from
// overlapping.
package batch
