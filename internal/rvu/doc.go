// Package rvu holds the process-scoped lookup tables consumed by the web
// surface: the work-RVU value per procedure code and the bidirectional
// PTP edit-pair table, plus the combination scoring built on them.
//
// Both tables live in an explicit Store with a reload operation invoked
// at the orchestrator boundary, so tests construct isolated instances
// instead of sharing module-level globals.
package rvu
