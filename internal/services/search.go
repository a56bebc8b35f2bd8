package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
)

var ErrSearchDisabled = errors.New("talent search is not configured")

const maxSnippetRunes = 240

// ProfileIndexer pushes one student profile into the search index.
type ProfileIndexer interface {
	IndexProfile(ctx context.Context, studentID uuid.UUID) error
}

type profileIndexer struct {
	students repositories.StudentRepository
	gemini   GeminiService
	index    TalentIndex
	chunker  TextChunker
	logger   *zap.Logger
}

func NewProfileIndexer(
	students repositories.StudentRepository,
	gemini GeminiService,
	index TalentIndex,
	chunker TextChunker,
	log *zap.Logger,
) ProfileIndexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &profileIndexer{
		students: students,
		gemini:   gemini,
		index:    index,
		chunker:  chunker,
		logger:   log,
	}
}

// IndexProfile embeds the current profile and replaces its points. A profile
// that no longer exists is removed from the index.
func (p *profileIndexer) IndexProfile(ctx context.Context, studentID uuid.UUID) error {
	profile, err := p.students.FindFull(ctx, studentID)
	if errors.Is(err, repositories.ErrNotFound) {
		return p.index.DeleteProfile(ctx, studentID)
	}
	if err != nil {
		return err
	}

	texts := p.chunker.Chunk(BuildSearchDocument(profile))
	chunks := make([]IndexedChunk, 0, len(texts))
	for _, text := range texts {
		vector, err := p.gemini.GenerateEmbedding(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed profile chunk: %w", err)
		}
		chunks = append(chunks, IndexedChunk{Text: text, Vector: vector})
	}

	if err := p.index.UpsertProfile(ctx, studentID, profile.Faculty, chunks); err != nil {
		return err
	}

	// UpdatedAt of the loaded snapshot, so edits made meanwhile stay in the backlog
	return p.students.MarkIndexed(ctx, studentID, profile.UpdatedAt)
}

// BuildSearchDocument renders a profile as paragraphs of plain text.
func BuildSearchDocument(profile *models.StudentProfile) string {
	var paragraphs []string

	header := profile.FullName()
	if profile.Faculty != "" {
		header += ", " + profile.Faculty
	}
	if profile.Major != "" {
		header += ", " + profile.Major
	}
	paragraphs = append(paragraphs, header)

	if bio := strings.TrimSpace(profile.Bio); bio != "" {
		paragraphs = append(paragraphs, bio)
	}
	if len(profile.Skills) > 0 {
		paragraphs = append(paragraphs, "Skills: "+strings.Join(profile.Skills, ", "))
	}

	for _, project := range profile.Projects {
		text := "Project: " + project.Title
		if project.Role != "" {
			text += " (" + project.Role + ")"
		}
		if project.Description != "" {
			text += ". " + project.Description
		}
		if len(project.Technologies) > 0 {
			text += ". Technologies: " + strings.Join(project.Technologies, ", ")
		}
		paragraphs = append(paragraphs, text)
	}

	for _, achievement := range profile.Achievements {
		text := "Achievement: " + achievement.Title
		if achievement.Level != "" {
			text += " (" + string(achievement.Level) + ")"
		}
		if achievement.Position != "" {
			text += ", " + achievement.Position
		}
		paragraphs = append(paragraphs, text)
	}

	for _, certificate := range profile.Certificates {
		text := "Certificate: " + certificate.Name
		if certificate.Issuer != "" {
			text += " by " + certificate.Issuer
		}
		paragraphs = append(paragraphs, text)
	}

	return strings.Join(paragraphs, "\n\n")
}

type SearchService interface {
	Search(ctx context.Context, query string, limit int, faculty string) ([]models.SearchHit, error)
}

type searchService struct {
	students repositories.StudentRepository
	gemini   GeminiService
	index    TalentIndex
}

// NewSearchService returns a service that answers ErrSearchDisabled when
// index is nil.
func NewSearchService(students repositories.StudentRepository, gemini GeminiService, index TalentIndex) SearchService {
	return &searchService{students: students, gemini: gemini, index: index}
}

func (s *searchService) Search(ctx context.Context, query string, limit int, faculty string) ([]models.SearchHit, error) {
	if s.index == nil || s.gemini == nil {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	vector, err := s.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// several chunks of one profile can match, so over-fetch before de-duplicating
	hits, err := s.index.Search(ctx, vector, limit*3, strings.TrimSpace(faculty))
	if err != nil {
		return nil, err
	}

	best := make(map[uuid.UUID]IndexHit)
	var order []uuid.UUID
	for _, hit := range hits {
		current, seen := best[hit.StudentID]
		if !seen {
			order = append(order, hit.StudentID)
		}
		if !seen || hit.Score > current.Score {
			best[hit.StudentID] = hit
		}
	}

	students, err := s.students.FindByIDs(ctx, order)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchHit, 0, len(students))
	for i := range students {
		hit := best[students[i].ID]
		results = append(results, models.SearchHit{
			Student: &students[i],
			Score:   hit.Score,
			Snippet: truncateRunes(hit.Text, maxSnippetRunes),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
