// Package natureserve queries the NatureServe national species name search.
// Responses are XML; they are decoded into nested maps so the packager can
// walk them by dotted path.
package natureserve
