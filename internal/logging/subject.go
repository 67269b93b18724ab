package logging

import "strings"

// FormatSubject builds the authority/search-key subject string used in console output.
func FormatSubject(authority, searchKey string) string {
	authority = strings.TrimSpace(authority)
	searchKey = strings.TrimSpace(searchKey)
	switch {
	case authority != "" && searchKey != "":
		return strings.ToUpper(authority) + " · " + searchKey
	case authority != "":
		return strings.ToUpper(authority)
	default:
		return searchKey
	}
}
