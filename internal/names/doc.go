// Package names canonicalizes raw scientific names before they are used as
// search keys.
//
// Clean is pure and idempotent: running it on its own output changes nothing.
// It repairs mis-encoded text, strips digits and bracketed annotations, cuts
// the name at the first qualifier marker (subspecies, variety, hybrid, and
// informal-rank markers among others), and capitalizes the result. CleanValue
// accepts loosely typed input from spreadsheets and queues and reports false
// for values that cannot be a name at all.
package names
