// Package dataset turns fetched NCCI archive payloads into the combined
// on-disk edit table.
//
// It extracts the single data member from a release archive, parses the
// spreadsheet or text payload into a normalized table, merges the two
// companion files of a release, and persists the result next to the
// version marker. The marker is only ever written after the table write
// succeeded, so a crash between the two writes can never advertise data
// that is not on disk.
package dataset
