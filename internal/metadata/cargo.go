// cargo.go runs `cargo metadata` to resolve capabilities.
package metadata

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// DefaultCargo is the cargo binary used when $CARGO is not set.
const DefaultCargo = "cargo"

// CargoProvider resolves capabilities by running `cargo metadata`.
type CargoProvider struct {
	// Cargo is the cargo binary to run. Cargo sets $CARGO for subcommands,
	// so the caller usually passes that through.
	Cargo string

	// ManifestPath is passed to cargo as --manifest-path.
	ManifestPath string
}

// Capabilities runs cargo and selects crate from its output.
func (p *CargoProvider) Capabilities(ctx context.Context, crate string) (*model.PackageCapabilities, error) {
	out, err := p.run(ctx, "metadata", "--format-version", "1", "--manifest-path", p.ManifestPath)
	if err != nil {
		return nil, err
	}

	m, err := Decode(out)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitMetadataFailed, "unexpected cargo metadata output", err)
	}
	return m.Capabilities(crate)
}

// run executes cargo and returns its stdout. The subprocess is killed when
// ctx is cancelled.
func (p *CargoProvider) run(ctx context.Context, args ...string) ([]byte, error) {
	cargo := p.Cargo
	if cargo == "" {
		cargo = DefaultCargo
	}

	// #nosec G204 -- the binary comes from $CARGO, arguments are fixed
	cmd := exec.CommandContext(ctx, cargo, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("%s %s failed", cargo, args[0])
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return nil, model.WrapCLIError(model.ExitMetadataFailed, message, err)
	}
	return []byte(stdout.String()), nil
}
