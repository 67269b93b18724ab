// Package config reads the sppin TOML file and fills in what it leaves out.
//
// Defaults cover every field, so a missing file is not an error. Paths accept
// a leading tilde and are made absolute during Load. The IUCN token may come
// from the file or from IUCN_TOKEN in the environment. Load validates the
// result, so callers can use the returned Config without further checks.
package config
