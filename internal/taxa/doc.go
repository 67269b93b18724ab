// Package taxa holds the data model shared by every authority: search keys,
// processing envelopes, normalized records, and the stamping service that
// dates them.
//
// Records are assembled through RecordBuilder and handed out by value; the
// builder copies every slice and map so a Record never aliases the document
// it was built from. SubRecord is the two-case result of decomposing a packed
// field: either Parsed named components or the RawFallback text that did not
// match the expected shape.
package taxa
