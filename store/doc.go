// Package store defines the document storage contract used by delimtools.
//
// A Store opens existing documents for reading and creates new ones for writing.
// Implementations report failures with the categorized errors of this package so
// callers can tell a missing document from a full quota or a read-only folder.
// See the sqlitestore and fsstore sub-packages for ready-made implementations.
package store
