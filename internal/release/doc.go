// Package release models NCCI release identifiers and the templated
// download URLs that embed them.
//
// A release is identified by year, quarter, major version, and revision
// (for example 2025q4 v313r0). The same tuple appears both in the license
// gate URL and in the on-disk version marker; this package owns parsing
// and rewriting for both representations, plus the ordered candidate
// sequence used when probing for a newer release.
package release
