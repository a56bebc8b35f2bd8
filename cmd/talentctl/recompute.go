package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/bootstrap"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Re-score one stored profile (--student) or every profile (--all)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		studentFlag, _ := cmd.Flags().GetString("student")
		all, _ := cmd.Flags().GetBool("all")
		if (studentFlag == "") == !all {
			return errors.New("exactly one of --student or --all is required")
		}

		var ids []uuid.UUID
		if studentFlag != "" {
			id, err := uuid.Parse(studentFlag)
			if err != nil {
				return fmt.Errorf("invalid student id: %w", err)
			}
			ids = append(ids, id)
		}

		return withContainer(cmd.Context(), func(e *env, c *bootstrap.Container) error {
			if all {
				var err error
				if ids, err = c.Students.ListIDs(cmd.Context()); err != nil {
					return err
				}
			}

			var failed int
			for _, id := range ids {
				outcome, err := c.Scorer.Recompute(cmd.Context(), id)
				if err != nil {
					failed++
					e.log.Error("❌ recompute failed", zap.String("student_id", id.String()), zap.Error(err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.1f\tfallback=%t\tstored=%t\n", id, outcome.Score, outcome.Fallback, outcome.Stored)
			}

			e.log.Info("recompute finished", zap.Int("total", len(ids)), zap.Int("failed", failed))
			if failed > 0 {
				return fmt.Errorf("%d of %d profiles could not be re-scored", failed, len(ids))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().StringP("student", "s", "", "student id to re-score")
	recomputeCmd.Flags().Bool("all", false, "re-score every stored profile")
}
