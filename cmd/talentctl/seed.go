package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/bootstrap"
	"unitalent/talent-center/internal/models"
)

// seedStudent is one entry of a seed file: a registration plus its
// portfolio.
type seedStudent struct {
	models.RegisterStudentRequest
	Projects     []models.ProjectRequest     `json:"projects"`
	Achievements []models.AchievementRequest `json:"achievements"`
	Certificates []models.CertificateRequest `json:"certificates"`
}

// loadSeed parses a JSON array of seed students into unsaved profiles.
func loadSeed(r io.Reader) ([]*models.StudentProfile, error) {
	var entries []seedStudent
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding seed file: %w", err)
	}

	profiles := make([]*models.StudentProfile, 0, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Email) == "" || strings.TrimSpace(entry.FirstName) == "" {
			return nil, fmt.Errorf("seed entry %d: email and first_name are required", i)
		}

		profile := &models.StudentProfile{
			Email:     entry.Email,
			FirstName: entry.FirstName,
			LastName:  entry.LastName,
			Faculty:   entry.Faculty,
			Major:     entry.Major,
			Course:    entry.Course,
			Bio:       entry.Bio,
			Skills:    entry.Skills,
			Social:    entry.SocialLinks,
		}
		if profile.Skills == nil {
			profile.Skills = []string{}
		}

		for _, p := range entry.Projects {
			profile.Projects = append(profile.Projects, models.Project{
				Title:        p.Title,
				Description:  p.Description,
				Role:         p.Role,
				TeamSize:     p.TeamSize,
				Status:       models.ProjectStatus(p.Status),
				Link:         p.Link,
				Technologies: p.Technologies,
			})
		}
		for _, a := range entry.Achievements {
			level, ok := models.ParseAchievementLevel(a.Level)
			if !ok {
				return nil, fmt.Errorf("seed entry %d: unknown achievement level %q", i, a.Level)
			}
			profile.Achievements = append(profile.Achievements, models.Achievement{
				Title:    a.Title,
				Level:    level,
				Position: a.Position,
				Date:     a.Date,
				Link:     a.Link,
			})
		}
		for _, c := range entry.Certificates {
			profile.Certificates = append(profile.Certificates, models.Certificate{
				Name:   c.Name,
				Issuer: c.Issuer,
				URL:    c.URL,
			})
		}

		profiles = append(profiles, profile)
	}
	return profiles, nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create students and their portfolios from a JSON file, scoring each",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("opening seed file: %w", err)
		}
		defer f.Close()

		profiles, err := loadSeed(f)
		if err != nil {
			return err
		}

		return withContainer(cmd.Context(), func(e *env, c *bootstrap.Container) error {
			var created int
			for _, profile := range profiles {
				outcome := c.Scorer.ScoreProfile(cmd.Context(), profile)
				scoredAt := time.Now()
				profile.TalentScore = outcome.Score
				profile.TalentReasoning = outcome.Reasoning
				profile.ScoreFallback = outcome.Fallback
				profile.ScoredAt = &scoredAt

				// children are saved with the profile in one insert
				if err := c.Students.Create(cmd.Context(), profile); err != nil {
					e.log.Warn("⚠️ skipping seed entry", zap.String("email", profile.Email), zap.Error(err))
					continue
				}
				created++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.1f\n", profile.ID, profile.Email, profile.TalentScore)
			}

			e.log.Info("✅ seed finished", zap.Int("created", created), zap.Int("total", len(profiles)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringP("file", "f", "", "seed JSON file")
	_ = seedCmd.MarkFlagRequired("file")
}
