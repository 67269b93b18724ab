// Package resolver runs the tiered name search against one authority and
// assembles the processing envelope.
//
// A run issues at most one exact (or identifier) query and at most one fuzzy
// query. When the single discovered document is not the accepted name, the
// resolver follows canonical pointers through identifier lookups, tracking
// visited ids so cyclic pointer graphs terminate. Every outcome, including
// transport and credential failures, is reported through the envelope's
// status and audit trail; Resolve never returns an error.
package resolver
