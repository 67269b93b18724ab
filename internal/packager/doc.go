// Package packager converts authority-native documents into normalized
// records.
//
// Packaging is table driven: each authority's Dialect supplies a Layout that
// names the fields to drop, rename, split, and walk. The packager never
// mutates the source document and never fails; data that does not have the
// expected shape is carried into the record as a raw fallback.
package packager
