// Package worms queries the World Register of Marine Species REST service.
// Records are flat JSON objects linked to their accepted name through
// valid_AphiaID.
package worms
