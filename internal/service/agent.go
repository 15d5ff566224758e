package service

import (
	"context"
	"fmt"
	"strings"

	"scam-arena/internal/constants"
	"scam-arena/internal/domain"

	"github.com/rs/zerolog"
)

type AgentService struct {
	store  AgentStore
	logger zerolog.Logger
}

func NewAgentService(store AgentStore, logger zerolog.Logger) *AgentService {
	return &AgentService{store: store, logger: logger}
}

// List returns the leaderboard. An empty agentType means both teams; an
// unrecognised one yields an empty list.
func (s *AgentService) List(ctx context.Context, agentType string) ([]domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	// an unknown role matches nobody
	t := domain.AgentType(agentType)
	if t != "" && !t.Valid() {
		s.logger.Debug().Str("type", agentType).Msg("unknown agent type filter")
		return []domain.Agent{}, nil
	}

	agents, err := s.store.List(ctx, t)
	if err != nil {
		s.logger.Error().Err(err).Str("type", agentType).Msg("failed to list agents")
		return nil, err
	}

	s.logger.Debug().Int("count", len(agents)).Str("type", agentType).Msg("agents listed")
	return agents, nil
}

func (s *AgentService) Create(ctx context.Context, name, agentType string) (*domain.Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("agent name is empty: %w", domain.ErrValidation)
	}
	t := domain.AgentType(agentType)
	if !t.Valid() {
		return nil, fmt.Errorf("agent type %q: %w", agentType, domain.ErrValidation)
	}

	agent, err := s.store.Create(ctx, name, t)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to create agent")
		return nil, err
	}

	s.logger.Info().Str("agent_id", agent.ID).Str("name", agent.Name).Str("type", agentType).Msg("agent created")
	return agent, nil
}
