// Package mock provides test double implementations of the ai interfaces.
//
// The mocks let tests run without external embedding services and with
// controlled, deterministic behavior:
//
//	// Default behavior: deterministic unit vectors per text
//	provider := mock.NewMockProvider(8)
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"test"})
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, ai.ErrRateLimited
//	}
//
//	// Call count assertions
//	count := embedder.CallCount()
package mock
