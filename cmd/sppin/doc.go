// Command sppin resolves scientific names and native taxon identifiers
// against taxonomic and conservation authorities.
//
// Results are cached in a local SQLite database so repeated lookups within
// the freshness window never reach the network. The batch subcommand drains a
// file of names through a worker pool, and the cache subcommands inspect and
// maintain the database.
package main
