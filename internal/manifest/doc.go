// Package manifest implements the dependency feature mutation engine for
// Cargo-style manifests.
//
// One mutation pass runs four steps for every dependency table in the
// document:
//
//  1. LocateTables finds [dependencies], [dev-dependencies] and
//     [build-dependencies], plus the same tables under each
//     [target.<cond>] section, tagging each with its DependencyKind.
//  2. NormalizeEntry resolves the crate's declaration in the table and turns
//     a shorthand `crate = "1.0"` into an editable `{ version = "1.0" }`.
//  3. EditFeatures applies the add/remove requests, validated against the
//     crate's PackageCapabilities, and the default-features toggle.
//  4. CollapseEntry drops an empty feature list and turns a table that only
//     holds a version back into the shorthand form.
//
// Editor.Apply drives these steps over a *tomledit.Document. The document is
// edited in place; the pass stops at the first ShapeError and the caller must
// not persist a document from a failed pass.
//
// Dependency keys are compared literally inside tables. Only package lookup
// in metadata folds hyphens to underscores (see model.NormalizePackageName).
package manifest
