package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"scam-arena/internal/db"
	"scam-arena/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type BattleRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewBattleRepository(queries *db.Queries, logger zerolog.Logger) *BattleRepository {
	return &BattleRepository{
		queries: queries,
		logger:  logger,
	}
}

// Create stores a new battle. The pitch is kept as an opaque JSON blob.
func (r *BattleRepository) Create(ctx context.Context, battle *domain.Battle) (*domain.Battle, error) {
	id := battle.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	pitch, err := json.Marshal(battle.ScamPitch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scam pitch: %w", err)
	}

	err = r.queries.CreateBattle(ctx, db.CreateBattleParams{
		ID:             id,
		RedAgentID:     battle.RedAgentID,
		BlueAgentID:    battle.BlueAgentID,
		Status:         string(battle.Status),
		ScamPitch:      string(pitch),
		IsActuallyScam: battle.IsActuallyScam,
		CreatedAt:      battle.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert battle: %w", err)
	}

	return r.Get(ctx, id)
}

func (r *BattleRepository) Get(ctx context.Context, id string) (*domain.Battle, error) {
	row, err := r.queries.GetBattle(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return toDomainBattle(row)
}

func (r *BattleRepository) Recent(ctx context.Context, limit int) ([]domain.Battle, error) {
	rows, err := r.queries.ListRecentBattles(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	result := make([]domain.Battle, 0, len(rows))
	for _, row := range rows {
		b, err := toDomainBattle(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, nil
}

func (r *BattleRepository) SetStatus(ctx context.Context, id string, status domain.BattleStatus) error {
	n, err := r.queries.UpdateBattleStatus(ctx, db.UpdateBattleStatusParams{
		Status: string(status),
		ID:     id,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *BattleRepository) Resolve(ctx context.Context, id string, res domain.Resolution) (*domain.Battle, error) {
	detection, err := json.Marshal(res.DetectionResult)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detection result: %w", err)
	}

	n, err := r.queries.ResolveBattle(ctx, db.ResolveBattleParams{
		DetectionResult: sql.NullString{String: string(detection), Valid: true},
		BlueTeamCorrect: res.BlueTeamCorrect,
		WinnerID:        res.WinnerID,
		PointsAwarded:   int64(res.PointsAwarded),
		ResolvedAt:      res.ResolvedAt.UTC(),
		ID:              id,
	})
	if err != nil {
		r.logger.Error().Err(err).Str("battle_id", id).Msg("failed to resolve battle")
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}

	return r.Get(ctx, id)
}

func toDomainBattle(row db.Battle) (*domain.Battle, error) {
	b := &domain.Battle{
		ID:             row.ID,
		RedAgentID:     row.RedAgentID,
		BlueAgentID:    row.BlueAgentID,
		Status:         domain.BattleStatus(row.Status),
		IsActuallyScam: row.IsActuallyScam,
		CreatedAt:      row.CreatedAt,
	}

	if err := json.Unmarshal([]byte(row.ScamPitch), &b.ScamPitch); err != nil {
		return nil, fmt.Errorf("failed to decode scam pitch of battle %s: %w", row.ID, err)
	}
	if row.DetectionResult.Valid {
		var d domain.DetectionResult
		if err := json.Unmarshal([]byte(row.DetectionResult.String), &d); err != nil {
			return nil, fmt.Errorf("failed to decode detection result of battle %s: %w", row.ID, err)
		}
		b.DetectionResult = &d
	}
	if row.BlueTeamCorrect.Valid {
		correct := row.BlueTeamCorrect.Bool
		b.BlueTeamCorrect = &correct
	}
	if row.WinnerID.Valid {
		winner := row.WinnerID.String
		b.WinnerID = &winner
	}
	if row.PointsAwarded.Valid {
		points := int(row.PointsAwarded.Int64)
		b.PointsAwarded = &points
	}
	if row.ResolvedAt.Valid {
		resolved := row.ResolvedAt.Time
		b.ResolvedAt = &resolved
	}
	return b, nil
}
