// Package iucn queries the IUCN Red List API (v3). Every request carries an
// API token; each species result is followed by a citation lookup that
// supplies the assessment's secondary identifier and DOI.
package iucn
