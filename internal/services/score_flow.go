package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"unitalent/talent-center/internal/logger"
	"unitalent/talent-center/internal/metrics"
	"unitalent/talent-center/internal/models"
)

var (
	ErrInvalidInput    = errors.New("invalid score input")
	ErrModelInvocation = errors.New("model invocation failed")
	ErrInvalidOutput   = errors.New("invalid model output")
)

type Stage string

const (
	StageInput  Stage = "input"
	StageModel  Stage = "model"
	StageOutput Stage = "output"
)

const (
	minTalentScore = 0
	maxTalentScore = 100
)

// FlowError reports which step of a score run failed. Err always wraps one
// of ErrInvalidInput, ErrModelInvocation or ErrInvalidOutput.
type FlowError struct {
	Stage Stage
	Err   error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("talent score %s stage: %v", e.Stage, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage of a flow error, or "" for other errors.
func StageOf(err error) Stage {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr.Stage
	}
	return ""
}

type FlowOptions struct {
	Clamp        bool
	MaxLogLength int
}

// TalentScoreFlow validates a request, renders the rubric prompt, calls the
// provider once and validates the completion.
type TalentScoreFlow struct {
	provider ScoreProvider
	prompts  *PromptBuilder
	opts     FlowOptions
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewTalentScoreFlow(provider ScoreProvider, opts FlowOptions, log *zap.Logger, m *metrics.Metrics) *TalentScoreFlow {
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = 200
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TalentScoreFlow{
		provider: provider,
		prompts:  NewPromptBuilder(),
		opts:     opts,
		logger:   log.With(zap.String(logger.FieldProvider, provider.Name())),
		metrics:  m,
	}
}

func (f *TalentScoreFlow) ProviderName() string {
	return f.provider.Name()
}

func (f *TalentScoreFlow) Run(ctx context.Context, req models.ScoreRequest) (*models.ScoreResponse, error) {
	if err := ValidateScoreRequest(req); err != nil {
		return nil, &FlowError{Stage: StageInput, Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}

	prompt := f.prompts.BuildTalentScorePrompt(req.ProfileData)
	f.logger.Debug("talent score request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, f.opts.MaxLogLength)),
	)

	start := time.Now()
	raw, err := f.provider.Complete(ctx, prompt)
	if err != nil {
		f.metrics.ObserveScoreRun(f.provider.Name(), metrics.OutcomeFailure, time.Since(start))
		return nil, &FlowError{Stage: StageModel, Err: fmt.Errorf("%w: %v", ErrModelInvocation, err)}
	}

	f.logger.Debug("talent score response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, f.opts.MaxLogLength)),
	)

	resp, err := DecodeScoreResponse(raw)
	if err != nil {
		f.metrics.ObserveScoreRun(f.provider.Name(), metrics.OutcomeFailure, time.Since(start))
		return nil, &FlowError{Stage: StageOutput, Err: fmt.Errorf("%w: %v", ErrInvalidOutput, err)}
	}
	f.metrics.ObserveScoreRun(f.provider.Name(), metrics.OutcomeSuccess, time.Since(start))

	if f.opts.Clamp && (resp.TalentScore < minTalentScore || resp.TalentScore > maxTalentScore) {
		clamped := clampScore(resp.TalentScore)
		f.logger.Warn("talent score out of range, clamped",
			zap.Float64("score", resp.TalentScore),
			zap.Float64("clamped", clamped),
		)
		resp.TalentScore = clamped
	}

	return resp, nil
}

func clampScore(score float64) float64 {
	if score < minTalentScore {
		return minTalentScore
	}
	if score > maxTalentScore {
		return maxTalentScore
	}
	return score
}
