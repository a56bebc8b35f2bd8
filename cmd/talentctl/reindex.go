package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/bootstrap"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every stored profile to the search index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd.Context(), func(e *env, c *bootstrap.Container) error {
			if c.Indexer == nil {
				return errors.New("QDRANT_URL is not set, nothing to reindex")
			}

			ids, err := c.Students.ListIDs(cmd.Context())
			if err != nil {
				return err
			}

			var failed int
			for i, id := range ids {
				if err := c.Indexer.IndexProfile(cmd.Context(), id); err != nil {
					failed++
					e.log.Error("❌ indexing failed", zap.String("student_id", id.String()), zap.Error(err))
					continue
				}
				e.log.Debug("indexed", zap.Int("n", i+1), zap.String("student_id", id.String()))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d profiles\n", len(ids)-failed, len(ids))
			if failed > 0 {
				return fmt.Errorf("%d profiles failed to index", failed)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
