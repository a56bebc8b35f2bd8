package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/config"
	"unitalent/talent-center/internal/metrics"
	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
	"unitalent/talent-center/internal/testdb"
)

func defaultScoring() config.ScoringConfig {
	return config.ScoringConfig{
		FallbackMin:      config.DefaultFallbackMin,
		FallbackMax:      config.DefaultFallbackMax,
		Clamp:            true,
		MaxCertTextRunes: 100,
	}
}

func sampleStudent() *models.StudentProfile {
	return &models.StudentProfile{
		Email:     uuid.NewString() + "@example.com",
		FirstName: "Aysel",
		LastName:  "Mammadova",
		Faculty:   "Computer Science",
		Skills:    []string{"Go", "SQL"},
		Social:    models.SocialLinks{LinkedIn: "https://linkedin.com/in/aysel"},
		Projects: []models.Project{
			{Title: "Scheduler", Status: models.ProjectCompleted, Technologies: []string{"Go"}},
		},
		Achievements: []models.Achievement{
			{Title: "ICPC regional", Level: models.LevelRegional, Position: "2nd"},
		},
		Certificates: []models.Certificate{
			{Name: "CKA", Issuer: "CNCF", ExtractedText: "  Certified\n\n Kubernetes Administrator  "},
		},
	}
}

func TestScoreProfileSuccess(t *testing.T) {
	provider := &stubProvider{response: `{"talentScore": 77, "reasoning": "Regional ICPC and a completed project"}`}
	svc := NewTalentScoreService(NewTalentScoreFlow(provider, FlowOptions{Clamp: true}, nil, nil), nil, defaultScoring(), nil, nil)

	outcome := svc.ScoreProfile(context.Background(), sampleStudent())

	assert.False(t, outcome.Fallback)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, 77.0, outcome.Score)
	assert.Equal(t, "Regional ICPC and a completed project", outcome.Reasoning)

	for _, want := range []string{`"skills":["Go","SQL"]`, `"level":"Regional"`, `"linkedin":"https://linkedin.com/in/aysel"`, "Certified\\nKubernetes Administrator"} {
		assert.Contains(t, provider.lastPrompt, want)
	}
}

func TestScoreProfileFallsBackWithinBounds(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)
	providers := []ScoreProvider{
		&stubProvider{err: errors.New("unavailable")},
		&stubProvider{response: "no json here"},
		&stubProvider{response: `{"talentScore": 50}`},
	}

	for _, provider := range providers {
		svc := NewTalentScoreService(NewTalentScoreFlow(provider, FlowOptions{}, nil, m), nil, defaultScoring(), zap.NewNop(), m)
		for i := 0; i < 200; i++ {
			outcome := svc.ScoreProfile(context.Background(), sampleStudent())
			require.True(t, outcome.Fallback)
			require.Error(t, outcome.Err)
			require.GreaterOrEqual(t, outcome.Score, 10.0)
			require.Less(t, outcome.Score, 40.0)
			require.Equal(t, outcome.Score, float64(int(outcome.Score)))
			require.Equal(t, fallbackReasoning, outcome.Reasoning)
		}
	}

	count, err := testutil.GatherAndCount(reg, "talent_center_talent_score_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "model and output stages")
}

func TestFallbackUsesConfiguredBounds(t *testing.T) {
	flow := NewTalentScoreFlow(&stubProvider{err: errors.New("down")}, FlowOptions{}, nil, nil)

	svc := NewTalentScoreService(flow, nil, config.ScoringConfig{FallbackMin: 50, FallbackMax: 60}, nil, nil).(*talentScoreService)
	svc.randIntN = func(n int) int { return n - 1 }
	assert.Equal(t, 59.0, svc.ScoreProfile(context.Background(), sampleStudent()).Score)

	svc.randIntN = func(int) int { return 0 }
	assert.Equal(t, 50.0, svc.ScoreProfile(context.Background(), sampleStudent()).Score)

	invalid := NewTalentScoreService(flow, nil, config.ScoringConfig{FallbackMin: 40, FallbackMax: 40}, nil, nil).(*talentScoreService)
	assert.Equal(t, config.DefaultFallbackMin, invalid.fallbackMin)
	assert.Equal(t, config.DefaultFallbackMax, invalid.fallbackMax)
}

func TestRecomputeWritesScore(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	students := repositories.NewStudentRepository(db)

	student := sampleStudent()
	require.NoError(t, students.Create(ctx, student))

	svc := NewTalentScoreService(NewTalentScoreFlow(rubricProvider{}, FlowOptions{Clamp: true}, nil, nil), students, defaultScoring(), nil, nil)

	outcome, err := svc.Recompute(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Stored)
	assert.False(t, outcome.Fallback)

	stored, err := students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, outcome.Score, stored.TalentScore)
	assert.Equal(t, outcome.Reasoning, stored.TalentReasoning)
	assert.NotNil(t, stored.ScoredAt)

	_, err = svc.Recompute(ctx, uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRecomputeStoresFallback(t *testing.T) {
	ctx := context.Background()
	students := repositories.NewStudentRepository(testdb.New(t))
	student := sampleStudent()
	require.NoError(t, students.Create(ctx, student))

	svc := NewTalentScoreService(NewTalentScoreFlow(&stubProvider{err: errors.New("down")}, FlowOptions{}, nil, nil), students, defaultScoring(), nil, nil)

	outcome, err := svc.Recompute(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Fallback)

	stored, err := students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, stored.ScoreFallback)
	assert.GreaterOrEqual(t, stored.TalentScore, 10.0)
	assert.Less(t, stored.TalentScore, 40.0)
}

// sequenceProvider answers each call with the next response.
type sequenceProvider struct {
	mu        sync.Mutex
	responses []models.ScoreResponse
	next      int
}

func (s *sequenceProvider) Name() string { return "sequence" }

func (s *sequenceProvider) Complete(context.Context, string) (string, error) {
	s.mu.Lock()
	resp := s.responses[s.next%len(s.responses)]
	s.next++
	s.mu.Unlock()

	payload, err := json.Marshal(resp)
	return string(payload), err
}

func TestConcurrentRecomputesLeaveOneResult(t *testing.T) {
	ctx := context.Background()
	students := repositories.NewStudentRepository(testdb.New(t))
	student := sampleStudent()
	require.NoError(t, students.Create(ctx, student))

	provider := &sequenceProvider{responses: []models.ScoreResponse{
		{TalentScore: 31, Reasoning: "first evaluation"},
		{TalentScore: 87, Reasoning: "second evaluation"},
	}}
	svc := NewTalentScoreService(NewTalentScoreFlow(provider, FlowOptions{Clamp: true}, nil, nil), students, defaultScoring(), nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Recompute(ctx, student.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Contains(t, []models.ScoreResponse{
		{TalentScore: 31, Reasoning: "first evaluation"},
		{TalentScore: 87, Reasoning: "second evaluation"},
	}, models.ScoreResponse{TalentScore: stored.TalentScore, Reasoning: stored.TalentReasoning})
}

func TestRecomputeStaleWriteGuard(t *testing.T) {
	ctx := context.Background()
	students := repositories.NewStudentRepository(testdb.New(t))
	student := sampleStudent()
	require.NoError(t, students.Create(ctx, student))

	provider := &stubProvider{response: `{"talentScore": 90, "reasoning": "stale"}`}
	provider.onComplete = func() {
		edited := *student
		edited.Bio = "changed while scoring"
		require.NoError(t, students.Update(ctx, &edited, "Bio"))
	}

	cfg := defaultScoring()
	cfg.StaleWriteGuard = true
	svc := NewTalentScoreService(NewTalentScoreFlow(provider, FlowOptions{Clamp: true}, nil, nil), students, cfg, nil, nil)

	outcome, err := svc.Recompute(ctx, student.ID)
	require.NoError(t, err)
	assert.False(t, outcome.Stored)
	assert.Equal(t, 90.0, outcome.Score)

	stored, err := students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TalentScore)

	provider.onComplete = nil
	outcome, err = svc.Recompute(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Stored)
}

func TestBuildProfileSnapshot(t *testing.T) {
	profile := sampleStudent()
	profile.Certificates[0].ExtractedText = "Line one\n\n  Line two  "

	snapshot := BuildProfileSnapshot(profile, 12)

	assert.Equal(t, "Aysel", snapshot.FirstName)
	require.Len(t, snapshot.Projects, 1)
	assert.Equal(t, "completed", snapshot.Projects[0].Status)
	require.Len(t, snapshot.Achievements, 1)
	assert.Equal(t, "Regional", snapshot.Achievements[0].Level)
	require.Len(t, snapshot.Certificates, 1)
	assert.Equal(t, "Line one\nLin", snapshot.Certificates[0].Document)

	empty := BuildProfileSnapshot(&models.StudentProfile{FirstName: "Empty"}, 0)
	payload, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"firstName":"Empty","skills":[],"projects":[],"achievements":[],"certificates":[],"socialLinks":{}}`, string(payload))
}
