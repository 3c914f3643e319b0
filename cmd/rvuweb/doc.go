// Package main hosts the rvuweb CLI entrypoint and command graph.
//
// The Cobra-based command tree covers serving the web surface, running an
// edit-table sync by hand, inspecting the installed release and sync
// history, and configuration scaffolding. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
package main
