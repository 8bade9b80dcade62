// Package runjournal records a summary row per overlay run so cache
// efficiency and failure rates can be inspected over time without
// trawling logs.
package runjournal
