// Package ingest implements the built-in work kind for watched files: derive
// a display title from the filename, hash and measure the content, and log an
// analysis summary. Tasks either carry content captured when the file settled
// or read it lazily at execution time.
package ingest
