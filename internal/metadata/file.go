package metadata

import (
	"context"
	"fmt"
	"os"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// FileProvider resolves capabilities from a saved `cargo metadata` document,
// e.g. one produced by `cargo metadata --format-version 1 > meta.json`.
type FileProvider struct {
	Path string
}

// Capabilities reads the file and selects crate from it.
func (p *FileProvider) Capabilities(_ context.Context, crate string) (*model.PackageCapabilities, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitMetadataFailed,
			fmt.Sprintf("failed to read metadata file: %s", p.Path),
			err,
		)
	}

	m, err := Decode(data)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitMetadataFailed, p.Path, err)
	}
	return m.Capabilities(crate)
}
