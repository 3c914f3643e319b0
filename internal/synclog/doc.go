// Package synclog persists a journal of dataset sync runs in SQLite.
//
// Each completed run is recorded with its outcome, release, output path,
// and payload checksums so operators can audit what the resolver decided
// and when. The journal is strictly observational: the updater works the
// same with no journal attached.
package synclog
