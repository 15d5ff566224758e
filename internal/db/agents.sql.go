package db

import (
	"context"
	"time"
)

const agentColumns = `id, name, type, wins, losses, points, accuracy, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAgent(row rowScanner) (Agent, error) {
	var i Agent
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Type,
		&i.Wins,
		&i.Losses,
		&i.Points,
		&i.Accuracy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAgent = `
INSERT INTO agents (id, name, type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`

type CreateAgentParams struct {
	ID        string
	Name      string
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateAgent(ctx context.Context, arg CreateAgentParams) error {
	_, err := q.db.ExecContext(ctx, createAgent,
		arg.ID,
		arg.Name,
		arg.Type,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getAgent = `SELECT ` + agentColumns + ` FROM agents WHERE id = ?`

func (q *Queries) GetAgent(ctx context.Context, id string) (Agent, error) {
	row := q.db.QueryRowContext(ctx, getAgent, id)
	return scanAgent(row)
}

const listAgents = `SELECT ` + agentColumns + ` FROM agents ORDER BY points DESC, created_at ASC`

func (q *Queries) ListAgents(ctx context.Context) ([]Agent, error) {
	return q.queryAgents(ctx, listAgents)
}

const listAgentsByType = `SELECT ` + agentColumns + ` FROM agents WHERE type = ? ORDER BY points DESC, created_at ASC`

func (q *Queries) ListAgentsByType(ctx context.Context, agentType string) ([]Agent, error) {
	return q.queryAgents(ctx, listAgentsByType, agentType)
}

func (q *Queries) queryAgents(ctx context.Context, query string, args ...interface{}) ([]Agent, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Agent
	for rows.Next() {
		i, err := scanAgent(rows)
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

// Every right-hand side reads the pre-update row, so accuracy is computed
// from the old counters plus this battle.
const incrementAgentStats = `
UPDATE agents
SET wins       = wins + ?,
    losses     = losses + ?,
    points     = points + ?,
    accuracy   = CAST(wins + ? AS REAL) * 100.0 / (wins + losses + 1),
    updated_at = ?
WHERE id = ?`

type IncrementAgentStatsParams struct {
	ID        string
	Win       bool
	Points    int64
	UpdatedAt time.Time
}

// IncrementAgentStats returns the number of rows touched.
func (q *Queries) IncrementAgentStats(ctx context.Context, arg IncrementAgentStatsParams) (int64, error) {
	var win, loss int64
	if arg.Win {
		win = 1
	} else {
		loss = 1
	}
	result, err := q.db.ExecContext(ctx, incrementAgentStats,
		win,
		loss,
		arg.Points,
		win,
		arg.UpdatedAt,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
