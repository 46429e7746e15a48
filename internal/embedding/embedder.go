package embedding

import "context"

// Embedder converts free text into a numeric vector of a fixed dimension.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}
