package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"scam-arena/internal/database"
	"scam-arena/internal/db"
	"scam-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "arena.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func newRepos(t *testing.T) (*AgentRepository, *BattleRepository) {
	sqlDB := openTestDB(t)
	q := db.New(sqlDB)
	return NewAgentRepository(q, zerolog.Nop()), NewBattleRepository(q, zerolog.Nop())
}

func TestAgentCreateAndList(t *testing.T) {
	agents, _ := newRepos(t)
	ctx := context.Background()

	red, err := agents.Create(ctx, "Scammer-1", domain.RedTeam)
	require.NoError(t, err)
	assert.NotEmpty(t, red.ID)
	assert.Equal(t, "Scammer-1", red.Name)
	assert.Equal(t, domain.RedTeam, red.Type)
	assert.Zero(t, red.Wins)
	assert.False(t, red.CreatedAt.IsZero())

	blue, err := agents.Create(ctx, "Detector-1", domain.BlueTeam)
	require.NoError(t, err)
	require.NoError(t, agents.IncrementStats(ctx, blue.ID, true, 18))

	all, err := agents.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, blue.ID, all[0].ID, "highest points first")

	reds, err := agents.List(ctx, domain.RedTeam)
	require.NoError(t, err)
	require.Len(t, reds, 1)
	assert.Equal(t, red.ID, reds[0].ID)
}

func TestAgentCreateRejectsUnknownType(t *testing.T) {
	agents, _ := newRepos(t)
	_, err := agents.Create(context.Background(), "x", domain.AgentType("purple_team"))
	assert.Error(t, err)
}

func TestAgentGetMissing(t *testing.T) {
	agents, _ := newRepos(t)
	_, err := agents.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIncrementStatsTracksAccuracy(t *testing.T) {
	agents, _ := newRepos(t)
	ctx := context.Background()

	a, err := agents.Create(ctx, "Detector", domain.BlueTeam)
	require.NoError(t, err)

	require.NoError(t, agents.IncrementStats(ctx, a.ID, true, 18))
	require.NoError(t, agents.IncrementStats(ctx, a.ID, false, 0))
	require.NoError(t, agents.IncrementStats(ctx, a.ID, true, 10))
	require.NoError(t, agents.IncrementStats(ctx, a.ID, true, 15))

	got, err := agents.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Wins)
	assert.Equal(t, 1, got.Losses)
	assert.Equal(t, 43, got.Points)
	assert.InDelta(t, 75.0, got.Accuracy, 0.001)

	assert.ErrorIs(t, agents.IncrementStats(ctx, "ghost", true, 1), domain.ErrNotFound)
}

func samplePitch() domain.ScamPitch {
	return domain.ScamPitch{
		ID:              "8d3c1e7a-2f55-4d8e-9a41-5b2c7f0d9e11",
		ProjectName:     "RestakeDAO",
		Pitch:           "Earn 3% daily by restaking.",
		ScamType:        domain.Ponzi,
		PsychTriggers:   []string{"FOMO"},
		TechnicalClaims: []string{},
		RedFlags:        []string{"guaranteed returns"},
		Timestamp:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBattleLifecycle(t *testing.T) {
	agents, battles := newRepos(t)
	ctx := context.Background()

	red, err := agents.Create(ctx, "Scammer", domain.RedTeam)
	require.NoError(t, err)
	blue, err := agents.Create(ctx, "Detector", domain.BlueTeam)
	require.NoError(t, err)

	created, err := battles.Create(ctx, &domain.Battle{
		RedAgentID:     red.ID,
		BlueAgentID:    blue.ID,
		Status:         domain.StatusPending,
		ScamPitch:      samplePitch(),
		IsActuallyScam: true,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, samplePitch(), created.ScamPitch)
	assert.True(t, created.IsActuallyScam)
	assert.Nil(t, created.DetectionResult)
	assert.Nil(t, created.WinnerID)
	assert.Nil(t, created.PointsAwarded)
	assert.Nil(t, created.BlueTeamCorrect)
	assert.Nil(t, created.ResolvedAt)

	require.NoError(t, battles.SetStatus(ctx, created.ID, domain.StatusAnalyzing))
	got, err := battles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAnalyzing, got.Status)

	st := domain.Ponzi
	detection := domain.DetectionResult{
		IsScam:         true,
		Confidence:     85,
		ScamType:       &st,
		DetectedFlags:  []domain.RedFlag{{Flag: "Unrealistic returns", Severity: domain.SeverityHigh, Explanation: "3% daily"}},
		Reasoning:      "classic",
		Recommendation: domain.RecommendAvoid,
		AnalysisTime:   1200,
	}
	resolved, err := battles.Resolve(ctx, created.ID, domain.Resolution{
		DetectionResult: detection,
		BlueTeamCorrect: true,
		WinnerID:        blue.ID,
		PointsAwarded:   18,
		ResolvedAt:      time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.DetectionResult)
	assert.Equal(t, detection, *resolved.DetectionResult)
	require.NotNil(t, resolved.WinnerID)
	assert.Equal(t, blue.ID, *resolved.WinnerID)
	require.NotNil(t, resolved.PointsAwarded)
	assert.Equal(t, 18, *resolved.PointsAwarded)
	require.NotNil(t, resolved.BlueTeamCorrect)
	assert.True(t, *resolved.BlueTeamCorrect)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestBattleMissing(t *testing.T) {
	_, battles := newRepos(t)
	ctx := context.Background()

	_, err := battles.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, battles.SetStatus(ctx, "missing", domain.StatusAnalyzing), domain.ErrNotFound)
	_, err = battles.Resolve(ctx, "missing", domain.Resolution{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBattleRecentNewestFirst(t *testing.T) {
	agents, battles := newRepos(t)
	ctx := context.Background()

	red, err := agents.Create(ctx, "Scammer", domain.RedTeam)
	require.NoError(t, err)
	blue, err := agents.Create(ctx, "Detector", domain.BlueTeam)
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		b, err := battles.Create(ctx, &domain.Battle{
			RedAgentID:  red.ID,
			BlueAgentID: blue.ID,
			Status:      domain.StatusPending,
			ScamPitch:   samplePitch(),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	recent, err := battles.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func TestBattleRequiresExistingAgents(t *testing.T) {
	_, battles := newRepos(t)
	_, err := battles.Create(context.Background(), &domain.Battle{
		RedAgentID:  "ghost-red",
		BlueAgentID: "ghost-blue",
		Status:      domain.StatusPending,
		ScamPitch:   samplePitch(),
		CreatedAt:   time.Now(),
	})
	assert.Error(t, err, "foreign keys are enforced")
}
