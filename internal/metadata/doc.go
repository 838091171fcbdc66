// Package metadata retrieves the features and optional dependencies a crate
// exposes, which the manifest engine validates feature requests against.
//
// Three providers are available:
//
//   - CargoProvider runs `cargo metadata` for the manifest.
//   - FileProvider reads a saved `cargo metadata` document (JSON or JSONC).
//   - LocalProvider reads the Cargo.toml of a path dependency directly,
//     without invoking cargo.
//
// Crates are matched by name with hyphens and underscores treated as equal.
// When the dependency graph holds several versions of a crate, the version
// required by the workspace members wins.
package metadata
