package main

import (
	"fmt"

	"github.com/banktalk/banktalk/internal/cli"
	"github.com/banktalk/banktalk/pkg/rag"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the product document index",
	Long: `Reads a YAML or JSON corpus of extracted document pages, splits the text into
overlapping chunks (tables stay whole) and writes a search index for the
assistant's product answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetString("corpus"); v != "" {
			cfg.CorpusPath = v
		}
		if v, _ := cmd.Flags().GetString("index"); v != "" {
			cfg.IndexPath = v
		}
		force, _ := cmd.Flags().GetBool("force")

		chunker := rag.NewChunker()
		chunker.Size, _ = cmd.Flags().GetInt("chunk-size")
		chunker.Overlap, _ = cmd.Flags().GetInt("chunk-overlap")
		if chunker.Overlap >= chunker.Size {
			return fmt.Errorf("chunk-overlap (%d) must be smaller than chunk-size (%d)", chunker.Overlap, chunker.Size)
		}

		stats, err := cli.BuildIndex(cmd.Context(), cfg.CorpusPath, cfg.IndexPath, chunker, force)
		if err != nil {
			return err
		}
		logger.Debug("Index built", "index", cfg.IndexPath, "chunks", stats.Chunks)

		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s chunks from %s pages in %s documents into %s\n",
			humanize.Comma(int64(stats.Chunks)),
			humanize.Comma(int64(stats.Pages)),
			humanize.Comma(int64(stats.Documents)),
			cfg.IndexPath,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().String("corpus", "", "Corpus file (overrides corpus_path)")
	indexCmd.Flags().String("index", "", "Index directory (overrides index_path)")
	indexCmd.Flags().Bool("force", false, "Replace an existing index")
	indexCmd.Flags().Int("chunk-size", rag.DefaultChunkSize, "Maximum characters per chunk")
	indexCmd.Flags().Int("chunk-overlap", rag.DefaultChunkOverlap, "Characters shared by neighbouring chunks")
}
