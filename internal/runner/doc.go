// Package runner executes one full overlay update pass: list the
// library, resolve every title, write the overlay files, maintain the
// cache, and record a run summary.
package runner
