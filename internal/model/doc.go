// Package model defines the domain types and value objects for the
// cargo-feature CLI.
//
// This package contains pure data structures with no external dependencies:
// dependency kinds, feature edit requests, the default-features toggle and
// the package capability lookup supplied by the metadata collaborator.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
