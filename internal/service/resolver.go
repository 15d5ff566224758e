package service

import (
	"context"
	"math"
	"time"

	"scam-arena/internal/api"
	"scam-arena/internal/constants"
	"scam-arena/internal/domain"
	"scam-arena/internal/llmjson"

	"github.com/rs/zerolog"
)

// Verdict is the scored outcome of one detection.
type Verdict struct {
	Detection       domain.DetectionResult
	BlueTeamCorrect bool
	WinnerID        string
	LoserID         string
	PointsAwarded   int
}

type BattleResolver struct {
	llm    Chatter
	logger zerolog.Logger
}

func NewBattleResolver(llm Chatter, logger zerolog.Logger) *BattleResolver {
	return &BattleResolver{llm: llm, logger: logger}
}

// Resolve runs the blue team against the battle's pitch and scores the result.
// It has no side effects on stored state.
func (r *BattleResolver) Resolve(ctx context.Context, battle *domain.Battle) (*Verdict, error) {
	detection, err := r.Detect(ctx, battle.ScamPitch)
	if err != nil {
		return nil, err
	}
	v := Score(battle, *detection)
	return &v, nil
}

// Detect asks the blue team model whether pitch is a scam. The ground truth
// is never part of the prompt.
func (r *BattleResolver) Detect(ctx context.Context, pitch domain.ScamPitch) (*domain.DetectionResult, error) {
	start := time.Now()
	response, err := r.llm.Chat(ctx, []api.Message{
		{Role: api.RoleSystem, Content: blueTeamPrompt},
		{Role: api.RoleUser, Content: blueTeamUserPrompt(pitch)},
	}, api.ChatOptions{
		Temperature: constants.BlueTeamTemperature,
		MaxTokens:   constants.BlueTeamMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	obj, err := llmjson.Extract(response, "failed to parse detection result")
	if err != nil {
		r.logger.Warn().Err(err).Int("response_len", len(response)).Msg("blue team response unparseable")
		return nil, err
	}

	detection := SanitizeDetection(obj)
	detection.AnalysisTime = elapsed.Milliseconds()

	r.logger.Info().
		Str("pitch_id", pitch.ID).
		Bool("is_scam", detection.IsScam).
		Int("confidence", detection.Confidence).
		Str("recommendation", string(detection.Recommendation)).
		Int64("analysis_ms", detection.AnalysisTime).
		Msg("pitch analyzed")

	return &detection, nil
}

// SanitizeDetection coerces a decoded blue team object into a DetectionResult.
// AnalysisTime is left zero.
func SanitizeDetection(obj map[string]any) domain.DetectionResult {
	d := domain.DetectionResult{
		IsScam:         llmjson.Truthy(obj["isScam"]),
		Confidence:     SanitizeConfidence(obj["confidence"]),
		DetectedFlags:  []domain.RedFlag{},
		Recommendation: domain.RecommendInvestigate,
	}

	if st, ok := llmjson.String(obj, "scamType"); ok && domain.ScamType(st).Valid() {
		scamType := domain.ScamType(st)
		d.ScamType = &scamType
	}
	if reasoning, ok := llmjson.String(obj, "reasoning"); ok {
		d.Reasoning = reasoning
	}
	if rec, ok := llmjson.String(obj, "recommendation"); ok && domain.Recommendation(rec).Valid() {
		d.Recommendation = domain.Recommendation(rec)
	}

	for _, f := range llmjson.Objects(obj, "detectedFlags") {
		flag, _ := llmjson.String(f, "flag")
		severity, _ := llmjson.String(f, "severity")
		explanation, _ := llmjson.String(f, "explanation")
		if flag == "" && explanation == "" {
			continue
		}
		sev := domain.Severity(severity)
		if !sev.Valid() {
			sev = domain.SeverityMedium
		}
		d.DetectedFlags = append(d.DetectedFlags, domain.RedFlag{
			Flag:        flag,
			Severity:    sev,
			Explanation: explanation,
		})
	}

	return d
}

// SanitizeConfidence maps any model value onto an integer in [0,100];
// non-numeric input becomes the default of 50.
func SanitizeConfidence(v any) int {
	f, ok := llmjson.Number(v)
	if !ok {
		return constants.DefaultConfidence
	}
	f = math.Max(0, math.Min(100, f))
	return int(math.Round(f))
}

// Score decides the winner. Only a correct detection earns the confidence
// bonus; a miss hands the red team the base award.
func Score(battle *domain.Battle, detection domain.DetectionResult) Verdict {
	correct := detection.IsScam == battle.IsActuallyScam

	points := constants.BasePoints
	if correct {
		points += detection.Confidence / 10
	}

	v := Verdict{
		Detection:       detection,
		BlueTeamCorrect: correct,
		PointsAwarded:   points,
	}
	if correct {
		v.WinnerID, v.LoserID = battle.BlueAgentID, battle.RedAgentID
	} else {
		v.WinnerID, v.LoserID = battle.RedAgentID, battle.BlueAgentID
	}
	return v
}
