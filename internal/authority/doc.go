// Package authority defines the boundary between the resolution core and the
// external name registries.
//
// An Adapter answers one query per call with a three-way result: documents,
// no documents (not found), or an error (transport or decode failure). A
// Dialect describes how to read the documents an adapter returns: which field
// holds the native id, when a record counts as accepted, where the pointer to
// the accepted record lives, and the data tables the packager uses to build
// normalized records. The resolver and packager only ever see these two
// interfaces; everything registry-specific lives in the subpackages.
package authority
