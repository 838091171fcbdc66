// run.go implements the command itself.
//
// The run resolves the crate's capabilities through one of the metadata
// providers, then either lists them or edits the manifest. An edited
// manifest is validated before it is written, and a failed pass leaves the
// file on disk untouched.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/cargo-feature/internal/manifest"
	"github.com/mmr-tortoise/cargo-feature/internal/metadata"
	"github.com/mmr-tortoise/cargo-feature/internal/model"
	"github.com/mmr-tortoise/cargo-feature/internal/tomledit"
)

// featureOptions holds the flag values of the root command.
type featureOptions struct {
	// manifestPath is the Cargo.toml to edit.
	manifestPath string

	// preview prints the edited manifest to stdout instead of writing it.
	preview bool

	// ignoreProgress suppresses the progress stream.
	ignoreProgress bool

	// dependencyType selects the tables to edit: normal, dev or build.
	dependencyType string

	// target restricts edits to [target.<target>.*] tables.
	target string

	disableDefaultFeatures bool
	enableDefaultFeatures  bool

	// metadataFile reads saved `cargo metadata` output instead of running
	// cargo.
	metadataFile string

	// localMetadata reads path dependencies' manifests instead of running
	// cargo.
	localMetadata bool

	noColor bool
}

func (o *featureOptions) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.manifestPath, "manifest-path", "Cargo.toml", "Path to Cargo.toml")
	f.BoolVarP(&o.preview, "preview", "p", false, "Don't write the manifest, print it to stdout")
	f.BoolVarP(&o.ignoreProgress, "ignore-progress", "i", false, "Don't print progress output")
	f.StringVarP(&o.dependencyType, "dependency-type", "t", model.KindNormal.String(),
		"Dependency type: normal, dev, build")
	f.StringVar(&o.target, "target", "", "Only edit dependencies of this target, e.g. 'cfg(unix)'")
	f.BoolVar(&o.disableDefaultFeatures, "disable-default-features", false,
		"Disable the crate's default features, same as '^default'; overrides --enable-default-features")
	f.BoolVar(&o.enableDefaultFeatures, "enable-default-features", false,
		"Enable the crate's default features, same as 'default'")
	f.StringVar(&o.metadataFile, "metadata-file", "", "Read `cargo metadata` output from this file instead of running cargo")
	f.BoolVar(&o.localMetadata, "local-metadata", false, "Read features of path dependencies from their Cargo.toml instead of running cargo")
	f.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
}

// provider picks the metadata source selected by the flags.
func (o *featureOptions) provider() metadata.Provider {
	switch {
	case o.metadataFile != "":
		return &metadata.FileProvider{Path: o.metadataFile}
	case o.localMetadata:
		return &metadata.LocalProvider{ManifestPath: o.manifestPath}
	default:
		cargo := os.Getenv("CARGO")
		if cargo == "" {
			cargo = metadata.DefaultCargo
		}
		return &metadata.CargoProvider{Cargo: cargo, ManifestPath: o.manifestPath}
	}
}

// runFeature is the main logic of the command: resolve the crate's
// capabilities, then either list them or edit the manifest.
func runFeature(cmd *cobra.Command, opts *featureOptions, args []string) error {
	switch outputFormat {
	case formatText, formatJSON, formatYAML:
	default:
		return model.NewCLIError(model.ExitInvalidArgs,
			fmt.Sprintf("invalid format %q: valid values are text, json, yaml", outputFormat))
	}

	// Step 1: Interpret the arguments.
	kind, err := model.ParseDependencyKind(opts.dependencyType)
	if err != nil {
		return model.WrapCLIError(model.ExitInvalidArgs, "invalid --dependency-type", err)
	}

	crate := args[0]
	parsed, err := ParseFeatureArgs(args[1:], kind)
	if err != nil {
		return err
	}
	toggle := model.ResolveDefaultFeatures(
		parsed.EnableDefault || opts.enableDefaultFeatures,
		parsed.DisableDefault || opts.disableDefaultFeatures,
	)
	VerboseLog("crate=%s kind=%s requests=%v default-features=%s", crate, kind, parsed.Requests, toggle)

	// Step 2: Look up what the crate exposes. A missing package aborts
	// before the manifest is touched.
	provider := opts.provider()
	VerboseLog("Resolving metadata with %T", provider)
	caps, err := provider.Capabilities(cmd.Context(), crate)
	if err != nil {
		return metadataError(crate, err)
	}
	VerboseLog("Found %s %s with %d features", caps.Name, caps.Version, len(caps.Features))

	reporter := NewReporter(cmd.ErrOrStderr(), opts.ignoreProgress, !opts.noColor)

	// Step 3: Without edits, list the available features.
	if len(parsed.Requests) == 0 && toggle == model.DefaultFeaturesUnchanged {
		reporter.Available(crate)
		return printFeatureList(cmd.OutOrStdout(), caps, !opts.noColor)
	}

	// Step 4: Edit the manifest in memory.
	src, err := os.ReadFile(opts.manifestPath)
	if err != nil {
		return model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("failed to read manifest: %s", opts.manifestPath), err)
	}
	doc, err := tomledit.Parse(src)
	if err != nil {
		return model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("failed to parse manifest: %s", opts.manifestPath), err)
	}

	editor := &manifest.Editor{
		Crate:  crate,
		Target: opts.target,
		Changes: manifest.Changes{
			Kind:            kind,
			Requests:        parsed.Requests,
			DefaultFeatures: toggle,
		},
		Capabilities: caps,
		Reporter:     reporter,
	}
	res, err := editor.Apply(doc)
	if err != nil {
		var shapeErr *manifest.ShapeError
		if errors.As(err, &shapeErr) {
			return model.WrapCLIError(model.ExitManifestShape, "unexpected manifest shape", err)
		}
		return model.WrapCLIError(model.ExitManifestError, "failed to edit manifest", err)
	}
	if len(res.Declared) == 0 {
		table := kind.TableKey()
		if opts.target != "" {
			table = manifest.Location{Kind: kind, Target: opts.target}.String()
		}
		reporter.NotDeclared(crate, table)
	}
	if err := doc.Validate(); err != nil {
		return model.WrapCLIError(model.ExitManifestError, "edited manifest is not valid TOML", err)
	}

	// Step 5: Print or persist the result.
	if opts.preview {
		_, err := io.WriteString(cmd.OutOrStdout(), doc.String())
		return err
	}
	if len(res.Modified) == 0 {
		VerboseLog("Nothing changed, %s left as is", opts.manifestPath)
		return nil
	}
	if err := writeManifest(opts.manifestPath, doc.Bytes()); err != nil {
		return model.WrapCLIError(model.ExitManifestError,
			fmt.Sprintf("failed to write manifest: %s", opts.manifestPath), err)
	}
	VerboseLog("Wrote %s", opts.manifestPath)
	return nil
}

// metadataError maps a provider error to a CLIError.
func metadataError(crate string, err error) error {
	if errors.Is(err, metadata.ErrPackageNotFound) {
		return model.NewCLIError(model.ExitPackageNotFound,
			fmt.Sprintf("can't find package `%s` in metadata, please check it exists in the manifest", crate))
	}
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	return model.WrapCLIError(model.ExitMetadataFailed, "failed to resolve package metadata", err)
}

// writeManifest replaces path with data through a temporary file in the
// same directory, keeping the original file mode. A symlinked manifest is
// written through to its target so the link survives.
func writeManifest(path string, data []byte) error {
	path, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".Cargo.toml.*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
