package model

import (
	"fmt"
	"sort"
	"strings"
)

// DependencyKind tags which manifest section a dependency table came from.
// Tables nested under a target-conditional section carry the kind of the
// section name they were found under (target.<cond>.dependencies is Normal).
type DependencyKind string

const (
	// KindNormal is the [dependencies] section.
	KindNormal DependencyKind = "normal"

	// KindDev is the [dev-dependencies] section.
	KindDev DependencyKind = "dev"

	// KindBuild is the [build-dependencies] section.
	KindBuild DependencyKind = "build"
)

// String returns the string representation of DependencyKind.
func (k DependencyKind) String() string {
	return string(k)
}

// IsValid checks whether the DependencyKind value is one of the
// predefined kinds.
func (k DependencyKind) IsValid() bool {
	switch k {
	case KindNormal, KindDev, KindBuild:
		return true
	default:
		return false
	}
}

// TableKey returns the manifest key that holds dependency tables of this kind.
func (k DependencyKind) TableKey() string {
	switch k {
	case KindDev:
		return "dev-dependencies"
	case KindBuild:
		return "build-dependencies"
	default:
		return "dependencies"
	}
}

// ParseDependencyKind converts a string to a DependencyKind.
// Returns an error if the string does not match any valid kind.
func ParseDependencyKind(s string) (DependencyKind, error) {
	kind := DependencyKind(strings.ToLower(s))
	if !kind.IsValid() {
		return "", fmt.Errorf("%s is not valid dependency type (valid: normal, dev, build)", s)
	}
	return kind, nil
}

// Operation is the edit applied to one feature name.
type Operation int

const (
	// OpAdd appends the feature when it is not already listed.
	OpAdd Operation = iota

	// OpRemove deletes the feature when it is listed.
	OpRemove
)

// String returns "add" or "remove".
func (o Operation) String() string {
	if o == OpRemove {
		return "remove"
	}
	return "add"
}

// FeatureEditRequest asks for one feature name to be added to or removed
// from a dependency declaration of the given kind.
type FeatureEditRequest struct {
	// Kind restricts the request to dependency tables of this kind.
	Kind DependencyKind

	// Name is the feature (or optional dependency) name, compared literally.
	Name string

	// Op is the edit to apply.
	Op Operation
}

// String formats the request the way it is written on the command line:
// "+name" for additions and "^name" for removals.
func (r FeatureEditRequest) String() string {
	if r.Op == OpRemove {
		return "^" + r.Name
	}
	return "+" + r.Name
}

// DefaultFeatures is the tri-state default-features toggle. It is computed
// once per invocation and applied independently of the per-name edits.
type DefaultFeatures int

const (
	// DefaultFeaturesUnchanged leaves any default-features marker as it is.
	DefaultFeaturesUnchanged DefaultFeatures = iota

	// DefaultFeaturesEnable removes any default-features marker.
	DefaultFeaturesEnable

	// DefaultFeaturesDisable ensures default-features = false is present.
	DefaultFeaturesDisable
)

// String returns the toggle name used in verbose output.
func (d DefaultFeatures) String() string {
	switch d {
	case DefaultFeaturesEnable:
		return "enable"
	case DefaultFeaturesDisable:
		return "disable"
	default:
		return "unchanged"
	}
}

// ResolveDefaultFeatures combines the enable and disable signals.
// Disabling always wins over enabling.
func ResolveDefaultFeatures(enable, disable bool) DefaultFeatures {
	switch {
	case disable:
		return DefaultFeaturesDisable
	case enable:
		return DefaultFeaturesEnable
	default:
		return DefaultFeaturesUnchanged
	}
}

// DefaultFeatureName is the feature a package enables unless its dependents
// opt out with default-features = false.
const DefaultFeatureName = "default"

// PackageCapabilities describes what a package exposes for feature editing.
// It is read-only once built by the metadata collaborator.
type PackageCapabilities struct {
	// Name is the package name as reported by the metadata source.
	Name string `json:"name" yaml:"name"`

	// Version is the package version as reported by the metadata source.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Features maps each declared feature to the features and dependencies
	// it implies.
	Features map[string][]string `json:"features" yaml:"features"`

	// OptionalDependencies lists dependencies that are only pulled in when
	// activated. Each one implicitly exposes itself as a feature.
	OptionalDependencies []string `json:"optionalDependencies,omitempty" yaml:"optionalDependencies,omitempty"`
}

// IsValidTarget reports whether name can be added to or removed from a
// dependency's feature list.
func (p *PackageCapabilities) IsValidTarget(name string) bool {
	if _, ok := p.Features[name]; ok {
		return true
	}
	for _, dep := range p.OptionalDependencies {
		if dep == name {
			return true
		}
	}
	return false
}

// FeatureNames returns the declared feature names in display order:
// "default" first when declared, then the rest sorted.
func (p *PackageCapabilities) FeatureNames() []string {
	names := make([]string, 0, len(p.Features))
	for name := range p.Features {
		if name != DefaultFeatureName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := p.Features[DefaultFeatureName]; ok {
		names = append([]string{DefaultFeatureName}, names...)
	}
	return names
}

// NormalizePackageName folds hyphens to underscores. Package lookup in
// metadata uses this; key lookup inside dependency tables never does.
func NormalizePackageName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitManifestError indicates the manifest could not be read, parsed
	// or written.
	ExitManifestError ExitCode = 2

	// ExitManifestShape indicates a dependency table, target section or
	// dependency entry had an unexpected shape. Nothing was written.
	ExitManifestShape ExitCode = 3

	// ExitPackageNotFound indicates the target package is not present in
	// the package metadata.
	ExitPackageNotFound ExitCode = 4

	// ExitMetadataFailed indicates package metadata could not be retrieved.
	ExitMetadataFailed ExitCode = 5

	// ExitInvalidArgs indicates the command line could not be interpreted.
	ExitInvalidArgs ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
