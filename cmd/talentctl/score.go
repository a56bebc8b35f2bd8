package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/secrets"
	"unitalent/talent-center/internal/services"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run the talent score flow on a profile JSON file and print the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading profile: %w", err)
		}

		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.log.Sync()

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "GEMINI_API_KEY",
			Value: e.cfg.Gemini.APIKey,
			File:  e.cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return err
		}

		gemini, err := services.NewGeminiService(cmd.Context(), apiKey, e.cfg.Gemini, e.log)
		if err != nil {
			return err
		}
		flow := services.NewTalentScoreFlow(
			services.NewGeminiScoreProvider(gemini),
			services.FlowOptions{Clamp: e.cfg.Scoring.Clamp, MaxLogLength: e.cfg.Scoring.MaxLogLength},
			e.log,
			nil,
		)

		resp, err := flow.Run(cmd.Context(), models.ScoreRequest{ProfileData: string(data)})
		if err != nil {
			return fmt.Errorf("%s stage: %w", services.StageOf(err), err)
		}

		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")
		return out.Encode(resp)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("file", "f", "", "profile JSON file")
	_ = scoreCmd.MarkFlagRequired("file")
}
