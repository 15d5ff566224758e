package db

import (
	"database/sql"
	"time"
)

type Agent struct {
	ID        string
	Name      string
	Type      string
	Wins      int64
	Losses    int64
	Points    int64
	Accuracy  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Battle struct {
	ID              string
	RedAgentID      string
	BlueAgentID     string
	Status          string
	ScamPitch       string
	DetectionResult sql.NullString
	IsActuallyScam  bool
	BlueTeamCorrect sql.NullBool
	WinnerID        sql.NullString
	PointsAwarded   sql.NullInt64
	CreatedAt       time.Time
	ResolvedAt      sql.NullTime
}
