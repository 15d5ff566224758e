package db

import (
	"context"
	"database/sql"
	"time"
)

const battleColumns = `id, red_agent_id, blue_agent_id, status, scam_pitch, detection_result,
is_actually_scam, blue_team_correct, winner_id, points_awarded, created_at, resolved_at`

func scanBattle(row rowScanner) (Battle, error) {
	var i Battle
	err := row.Scan(
		&i.ID,
		&i.RedAgentID,
		&i.BlueAgentID,
		&i.Status,
		&i.ScamPitch,
		&i.DetectionResult,
		&i.IsActuallyScam,
		&i.BlueTeamCorrect,
		&i.WinnerID,
		&i.PointsAwarded,
		&i.CreatedAt,
		&i.ResolvedAt,
	)
	return i, err
}

const createBattle = `
INSERT INTO battles (id, red_agent_id, blue_agent_id, status, scam_pitch, is_actually_scam, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateBattleParams struct {
	ID             string
	RedAgentID     string
	BlueAgentID    string
	Status         string
	ScamPitch      string
	IsActuallyScam bool
	CreatedAt      time.Time
}

func (q *Queries) CreateBattle(ctx context.Context, arg CreateBattleParams) error {
	_, err := q.db.ExecContext(ctx, createBattle,
		arg.ID,
		arg.RedAgentID,
		arg.BlueAgentID,
		arg.Status,
		arg.ScamPitch,
		arg.IsActuallyScam,
		arg.CreatedAt,
	)
	return err
}

const getBattle = `SELECT ` + battleColumns + ` FROM battles WHERE id = ?`

func (q *Queries) GetBattle(ctx context.Context, id string) (Battle, error) {
	row := q.db.QueryRowContext(ctx, getBattle, id)
	return scanBattle(row)
}

const listRecentBattles = `SELECT ` + battleColumns + ` FROM battles ORDER BY created_at DESC LIMIT ?`

func (q *Queries) ListRecentBattles(ctx context.Context, limit int64) ([]Battle, error) {
	rows, err := q.db.QueryContext(ctx, listRecentBattles, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Battle
	for rows.Next() {
		i, err := scanBattle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateBattleStatus = `UPDATE battles SET status = ? WHERE id = ?`

type UpdateBattleStatusParams struct {
	Status string
	ID     string
}

func (q *Queries) UpdateBattleStatus(ctx context.Context, arg UpdateBattleStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBattleStatus, arg.Status, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const resolveBattle = `
UPDATE battles
SET status            = 'resolved',
    detection_result  = ?,
    blue_team_correct = ?,
    winner_id         = ?,
    points_awarded    = ?,
    resolved_at       = ?
WHERE id = ?`

type ResolveBattleParams struct {
	DetectionResult sql.NullString
	BlueTeamCorrect bool
	WinnerID        string
	PointsAwarded   int64
	ResolvedAt      time.Time
	ID              string
}

func (q *Queries) ResolveBattle(ctx context.Context, arg ResolveBattleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, resolveBattle,
		arg.DetectionResult,
		arg.BlueTeamCorrect,
		arg.WinnerID,
		arg.PointsAwarded,
		arg.ResolvedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
