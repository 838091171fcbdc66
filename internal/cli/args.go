// args.go turns the positional feature arguments into edit requests and
// the default-features toggle.
package cli

import (
	"fmt"
	"strings"

	"github.com/mmr-tortoise/cargo-feature/internal/model"
)

// FeatureArgs is the interpretation of the feature arguments.
type FeatureArgs struct {
	// Requests are the per-name edits in argument order.
	Requests []model.FeatureEditRequest

	// EnableDefault is set by "default" or "+default".
	EnableDefault bool

	// DisableDefault is set by "^default".
	DisableDefault bool
}

// ParseFeatureArgs interprets feature arguments for the given dependency
// kind. "+name" and "name" add, "^name" removes. The default feature is
// turned into the default-features toggle instead of a request. Repeated
// identical arguments count once.
func ParseFeatureArgs(args []string, kind model.DependencyKind) (*FeatureArgs, error) {
	parsed := &FeatureArgs{}
	seen := make(map[string]bool, len(args))

	for _, arg := range args {
		if seen[arg] {
			continue
		}
		seen[arg] = true

		switch arg {
		case "^" + model.DefaultFeatureName:
			parsed.DisableDefault = true
			continue
		case model.DefaultFeatureName, "+" + model.DefaultFeatureName:
			parsed.EnableDefault = true
			continue
		}

		req := model.FeatureEditRequest{Kind: kind, Name: arg, Op: model.OpAdd}
		switch {
		case strings.HasPrefix(arg, "+"):
			req.Name = arg[1:]
		case strings.HasPrefix(arg, "^"):
			req.Name = arg[1:]
			req.Op = model.OpRemove
		}
		if req.Name == "" {
			return nil, model.NewCLIError(model.ExitInvalidArgs, fmt.Sprintf("invalid feature argument %q", arg))
		}
		parsed.Requests = append(parsed.Requests, req)
	}
	return parsed, nil
}
