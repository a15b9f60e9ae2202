package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/veridoc/pkg/config"
	"github.com/soundprediction/veridoc/pkg/corpus"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the corpus and build the vector index",
	Long: `Read the corpus, embed every document through the configured
embedding provider, and upsert the vectors into the vector index. Run this
before starting the server with a badger-backed index; the server only
searches the index, it never writes to it.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().String("embedding-provider", "openai", "Embedding provider (openai, embedeverything)")
	indexCmd.Flags().String("embedding-model", "text-embedding-3-small", "Embedding model")
	indexCmd.Flags().String("index-backend", "badger", "Vector index backend (memory, badger)")
	indexCmd.Flags().String("index-path", "./veridoc_index", "Vector index path (badger backend)")

	viper.BindPFlag("embedding.provider", indexCmd.Flags().Lookup("embedding-provider"))
	viper.BindPFlag("embedding.model", indexCmd.Flags().Lookup("embedding-model"))
	viper.BindPFlag("vector_index.backend", indexCmd.Flags().Lookup("index-backend"))
	viper.BindPFlag("vector_index.path", indexCmd.Flags().Lookup("index-path"))
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	emb, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	if emb == nil {
		return fmt.Errorf("indexing requires an embedding provider, got %q", cfg.Embedding.Provider)
	}
	defer emb.Close()

	// Indexing writes directly to the backend, without the breaker.
	breakers := cfg.CircuitBreaker.Enabled
	cfg.CircuitBreaker.Enabled = false
	index, err := buildIndex(cfg, log)
	cfg.CircuitBreaker.Enabled = breakers
	if err != nil {
		return err
	}
	defer index.Close()

	ctx := context.Background()
	docs, err := corpus.NewFileLoader(cfg.Corpus.Path).Load(ctx)
	if err != nil {
		return err
	}
	snap, err := corpus.NewSnapshot(docs)
	if err != nil {
		return err
	}

	log.Info("indexing corpus", "documents", snap.Len(), "model", cfg.Embedding.Model)

	for _, doc := range snap.Documents() {
		text := doc.Title + "\n" + doc.Content
		vector, err := emb.EmbedSingle(ctx, text)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		if err := index.Upsert(ctx, doc.ID, doc.Domain, vector); err != nil {
			return fmt.Errorf("index document %s: %w", doc.ID, err)
		}
		log.Debug("indexed document", "document_id", doc.ID)
	}

	log.Info("index built", "documents", index.Len())
	return nil
}
