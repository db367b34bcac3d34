// Package registry keeps named groups of account keys and the price snapshots
// validated for them.
//
// Entries are addressed by an id from a counter that only moves forward.
// Name-addressed delete and lookup act on the first match; whether names must
// be unique is an Options switch.
package registry
