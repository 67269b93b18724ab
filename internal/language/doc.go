// Package language normalizes the language labels authorities attach to
// common names.
//
// Registries disagree on the form: one sends "English", another "eng", a third
// "en". Everything that filters or displays common names by language goes
// through here so a summary's English common name is found regardless of the
// label style.
package language
