package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"scam-arena/internal/db"
	"scam-arena/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type AgentRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewAgentRepository(queries *db.Queries, logger zerolog.Logger) *AgentRepository {
	return &AgentRepository{
		queries: queries,
		logger:  logger,
	}
}

// List returns agents ordered by points, optionally restricted to one role.
func (r *AgentRepository) List(ctx context.Context, agentType domain.AgentType) ([]domain.Agent, error) {
	var (
		rows []db.Agent
		err  error
	)
	if agentType == "" {
		rows, err = r.queries.ListAgents(ctx)
	} else {
		rows, err = r.queries.ListAgentsByType(ctx, string(agentType))
	}
	if err != nil {
		return nil, err
	}

	result := make([]domain.Agent, len(rows))
	for i, row := range rows {
		result[i] = toDomainAgent(row)
	}
	return result, nil
}

func (r *AgentRepository) Create(ctx context.Context, name string, agentType domain.AgentType) (*domain.Agent, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	now := time.Now().UTC()
	err = r.queries.CreateAgent(ctx, db.CreateAgentParams{
		ID:        id,
		Name:      name,
		Type:      string(agentType),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert agent: %w", err)
	}

	r.logger.Debug().Str("agent_id", id).Str("type", string(agentType)).Msg("agent created")
	return r.Get(ctx, id)
}

func (r *AgentRepository) Get(ctx context.Context, id string) (*domain.Agent, error) {
	row, err := r.queries.GetAgent(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	agent := toDomainAgent(row)
	return &agent, nil
}

// IncrementStats adds one win (with points) or one loss to the agent in a
// single statement.
func (r *AgentRepository) IncrementStats(ctx context.Context, id string, win bool, points int) error {
	n, err := r.queries.IncrementAgentStats(ctx, db.IncrementAgentStatsParams{
		ID:        id,
		Win:       win,
		Points:    int64(points),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		r.logger.Error().Err(err).Str("agent_id", id).Msg("failed to increment agent stats")
		return err
	}
	if n == 0 {
		return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}

	r.logger.Debug().
		Str("agent_id", id).
		Bool("win", win).
		Int("points", points).
		Msg("agent stats incremented")
	return nil
}

func toDomainAgent(row db.Agent) domain.Agent {
	return domain.Agent{
		ID:        row.ID,
		Name:      row.Name,
		Type:      domain.AgentType(row.Type),
		Wins:      int(row.Wins),
		Losses:    int(row.Losses),
		Points:    int(row.Points),
		Accuracy:  row.Accuracy,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
