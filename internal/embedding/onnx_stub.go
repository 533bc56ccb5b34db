//go:build !onnx

package embedding

import (
	"fmt"

	"github.com/contextweave/contextweave/internal/config"
)

// newModelEmbedder reports that model support was not compiled in. Builds
// without the "onnx" tag avoid the onnxruntime shared-library requirement;
// New falls back to the hash embedder.
func newModelEmbedder(cfg *config.Config) (Embedder, error) {
	return nil, fmt.Errorf("built without onnx support")
}
