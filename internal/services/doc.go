// Package services defines shared utilities consumed by the resolver, the
// authority adapters, and the cache layer.
//
// Key responsibilities:
//   - Context helpers that stamp authority names, search keys, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     transport failure from a decode failure or a credential problem with
//     errors.Is.
//
// Use these helpers when wiring new adapters so failure classification and
// observability stay uniform across authorities.
package services
