// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// OpenAI-compatible APIs and for local embedding via EmbedEverything.
//
// # Supported Providers
//
//   - OpenAI: text-embedding-3-small, text-embedding-3-large, text-embedding-ada-002
//   - EmbedEverything: local sentence-transformer models, no network required
//
// # Usage
//
//	emb := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model: "text-embedding-3-small",
//	})
//
//	vectors, err := emb.Embed(ctx, []string{"hello world"})
//
// # Batch Processing
//
// The Client interface supports batch embedding for efficiency:
//   - Embed(): Embed multiple texts in a single request
//   - EmbedSingle(): Convenience method for single text
package embedder
