// Package logging builds the slog loggers used by the CLI, the batch runner
// and the resolver.
//
// Two handlers are available. The console handler prints one line per record
// with an [AUTHORITY · search key #id] subject lifted out of the attributes.
// The JSON handler writes one object per line and is always used for the log
// file. WithContext copies the authority, search key and correlation ID that
// services stores on a context onto a logger.
package logging
