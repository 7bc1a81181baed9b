// Package timezones is a drop-in options source for timezone selects: an
// embedded IANA zone list, a relevance-ranked search, and an HTTP handler
// whose responses the dataview loader consumes directly.
package timezones
