package domain

import (
	"time"
)

type AgentType string

const (
	RedTeam  AgentType = "red_team"
	BlueTeam AgentType = "blue_team"
)

func (t AgentType) Valid() bool {
	return t == RedTeam || t == BlueTeam
}

type ScamType string

const (
	Ponzi    ScamType = "ponzi"
	RugPull  ScamType = "rug_pull"
	PumpDump ScamType = "pump_dump"
	FakeICO  ScamType = "fake_ico"
	Phishing ScamType = "phishing"
)

var ScamTypes = []ScamType{Ponzi, RugPull, PumpDump, FakeICO, Phishing}

func (t ScamType) Valid() bool {
	for _, s := range ScamTypes {
		if t == s {
			return true
		}
	}
	return false
}

type BattleStatus string

const (
	StatusPending   BattleStatus = "pending"
	StatusAnalyzing BattleStatus = "analyzing"
	StatusResolved  BattleStatus = "resolved"
)

type Recommendation string

const (
	RecommendAvoid       Recommendation = "AVOID"
	RecommendCaution     Recommendation = "CAUTION"
	RecommendInvestigate Recommendation = "INVESTIGATE"
	RecommendSafe        Recommendation = "SAFE"
)

func (r Recommendation) Valid() bool {
	switch r {
	case RecommendAvoid, RecommendCaution, RecommendInvestigate, RecommendSafe:
		return true
	}
	return false
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      AgentType `json:"type"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Points    int       `json:"points"`
	Accuracy  float64   `json:"accuracy"` // percent of battles won
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScamPitch struct {
	ID              string    `json:"id"` // uuid v4
	ProjectName     string    `json:"projectName"`
	Pitch           string    `json:"pitch"`
	ScamType        ScamType  `json:"scamType"`
	PsychTriggers   []string  `json:"psychTriggers"`
	TechnicalClaims []string  `json:"technicalClaims"`
	RedFlags        []string  `json:"redFlags"`
	Timestamp       time.Time `json:"timestamp"`
}

type RedFlag struct {
	Flag        string   `json:"flag"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}

type DetectionResult struct {
	IsScam         bool           `json:"isScam"`
	Confidence     int            `json:"confidence"` // 0-100
	ScamType       *ScamType      `json:"scamType"`
	DetectedFlags  []RedFlag      `json:"detectedFlags"`
	Reasoning      string         `json:"reasoning"`
	Recommendation Recommendation `json:"recommendation"`
	AnalysisTime   int64          `json:"analysisTime"` // ms
}

type Battle struct {
	ID              string           `json:"id"`
	RedAgentID      string           `json:"red_agent_id"`
	BlueAgentID     string           `json:"blue_agent_id"`
	Status          BattleStatus     `json:"status"`
	ScamPitch       ScamPitch        `json:"scam_pitch"`
	DetectionResult *DetectionResult `json:"detection_result"`

	// ground truth, never shown to the detector
	IsActuallyScam bool `json:"is_actually_scam"`

	BlueTeamCorrect *bool      `json:"blue_team_correct"`
	WinnerID        *string    `json:"winner_id"`
	PointsAwarded   *int       `json:"points_awarded"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at"`
}

// Resolution is the set of fields written when a battle moves to resolved.
type Resolution struct {
	DetectionResult DetectionResult
	BlueTeamCorrect bool
	WinnerID        string
	PointsAwarded   int
	ResolvedAt      time.Time
}
