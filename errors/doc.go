// Package errors provides the structured error type shared by injectkit
// packages. Every failure carries a machine-readable code, a message and a
// details map so callers can branch on the code and log the details.
package errors
