package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Cloudinfo-Github/call-center-ai/core/knowledge"
	"github.com/spf13/cobra"
)

func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage the knowledge base",
	}
	cmd.AddCommand(newKBSeedCmd())
	cmd.AddCommand(newKBSearchCmd())
	return cmd
}

func newKBSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Embed and store documents from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var docs []knowledge.Document
			if err := json.Unmarshal(data, &docs); err != nil {
				return fmt.Errorf("failed to parse documents: %w", err)
			}
			if len(docs) == 0 {
				return fmt.Errorf("no documents in %s", args[0])
			}

			if cfg.Knowledge.Store != "mongo" {
				fmt.Fprintln(cmd.ErrOrStderr(),
					"warning: the memory store does not persist; configure a mongo store for durable data")
			}

			engine, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := engine.Add(cmd.Context(), docs...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents\n", len(docs))
			return nil
		},
	}
}

func newKBSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := buildEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := engine.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no results")
				return nil
			}
			for _, result := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%.3f  [%s] %s\n",
					result.Similarity, result.Document.Category, result.Document.Content)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", knowledge.DefaultLimit, "maximum number of results")
	return cmd
}
