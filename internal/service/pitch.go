package service

import (
	"context"

	"scam-arena/internal/api"
	"scam-arena/internal/constants"
	"scam-arena/internal/domain"
	"scam-arena/internal/llmjson"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scenario is a generated pitch plus the hidden ground truth.
type Scenario struct {
	Pitch          domain.ScamPitch
	IsActuallyScam bool
}

type PitchGenerator struct {
	llm    Chatter
	rand   RandSource
	now    Clock
	logger zerolog.Logger
}

func NewPitchGenerator(llm Chatter, rnd RandSource, now Clock, logger zerolog.Logger) *PitchGenerator {
	return &PitchGenerator{llm: llm, rand: rnd, now: now, logger: logger}
}

// Generate asks the red team model for a pitch. The ground-truth flag is drawn
// independently of anything the model returns.
func (g *PitchGenerator) Generate(ctx context.Context, hint *domain.ScamType) (*Scenario, error) {
	response, err := g.llm.Chat(ctx, []api.Message{
		{Role: api.RoleSystem, Content: redTeamPrompt},
		{Role: api.RoleUser, Content: redTeamUserPrompt(hint)},
	}, api.ChatOptions{
		Temperature: constants.RedTeamTemperature,
		MaxTokens:   constants.RedTeamMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	pitch, err := ParsePitch(response, hint)
	if err != nil {
		g.logger.Warn().Err(err).Int("response_len", len(response)).Msg("red team response unparseable")
		return nil, err
	}
	pitch.ID = uuid.NewString()
	pitch.Timestamp = g.now()

	isScam := g.rand.Float64() < constants.ActualScamProbability

	g.logger.Info().
		Str("pitch_id", pitch.ID).
		Str("project", pitch.ProjectName).
		Str("scam_type", string(pitch.ScamType)).
		Msg("scam pitch generated")

	return &Scenario{Pitch: *pitch, IsActuallyScam: isScam}, nil
}

// ParsePitch turns a red team response into a pitch, filling defaults for
// missing fields. ID and Timestamp are left for the caller.
func ParsePitch(response string, hint *domain.ScamType) (*domain.ScamPitch, error) {
	obj, err := llmjson.Extract(response, "failed to parse AI response")
	if err != nil {
		return nil, err
	}

	pitch := &domain.ScamPitch{
		ProjectName:     constants.DefaultProjectName,
		ScamType:        domain.Ponzi,
		PsychTriggers:   llmjson.Strings(obj, "psychTriggers"),
		TechnicalClaims: llmjson.Strings(obj, "technicalClaims"),
		RedFlags:        llmjson.Strings(obj, "redFlags"),
	}
	if name, ok := llmjson.String(obj, "projectName"); ok {
		pitch.ProjectName = name
	}
	if body, ok := llmjson.String(obj, "pitch"); ok {
		pitch.Pitch = body
	}

	if st, ok := llmjson.String(obj, "scamType"); ok && domain.ScamType(st).Valid() {
		pitch.ScamType = domain.ScamType(st)
	} else if hint != nil {
		pitch.ScamType = *hint
	}

	return pitch, nil
}
