// Package diag is the driver's diagnostic sink: severity-tagged,
// human-readable messages written to the error stream as they occur.
package diag
