package service

import (
	"context"
	"errors"
	"fmt"

	"scam-arena/internal/constants"
	"scam-arena/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type StartRequest struct {
	RedAgentID  string
	BlueAgentID string
	ScamType    string // optional hint
}

type StartResult struct {
	Battle    *domain.Battle
	ScamPitch domain.ScamPitch
}

type ResolveResult struct {
	Battle          *domain.Battle
	DetectionResult domain.DetectionResult
	BlueTeamCorrect bool
	PointsAwarded   int
}

type BattleService struct {
	agents    AgentStore
	battles   BattleStore
	generator *PitchGenerator
	resolver  *BattleResolver
	now       Clock
	logger    zerolog.Logger
}

func NewBattleService(
	agents AgentStore,
	battles BattleStore,
	generator *PitchGenerator,
	resolver *BattleResolver,
	now Clock,
	logger zerolog.Logger,
) *BattleService {
	return &BattleService{
		agents:    agents,
		battles:   battles,
		generator: generator,
		resolver:  resolver,
		now:       now,
		logger:    logger,
	}
}

// Start pairs two agents and stores a pending battle around a fresh pitch.
func (s *BattleService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	s.logger.Info().
		Str("red_agent_id", req.RedAgentID).
		Str("blue_agent_id", req.BlueAgentID).
		Str("scam_type", req.ScamType).
		Msg("starting battle")

	if req.RedAgentID == "" || req.BlueAgentID == "" || req.RedAgentID == req.BlueAgentID {
		return nil, fmt.Errorf("agents %q and %q: %w", req.RedAgentID, req.BlueAgentID, domain.ErrNotFound)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range []string{req.RedAgentID, req.BlueAgentID} {
		g.Go(func() error {
			_, err := s.agents.Get(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Msg("failed to load agents")
		}
		return nil, err
	}

	var hint *domain.ScamType
	if req.ScamType != "" {
		st := domain.ScamType(req.ScamType)
		if !st.Valid() {
			return nil, fmt.Errorf("scam type %q: %w", req.ScamType, domain.ErrValidation)
		}
		hint = &st
	}

	scenario, err := s.generator.Generate(ctx, hint)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate scam pitch")
		return nil, err
	}

	battle, err := s.battles.Create(ctx, &domain.Battle{
		RedAgentID:     req.RedAgentID,
		BlueAgentID:    req.BlueAgentID,
		Status:         domain.StatusPending,
		ScamPitch:      scenario.Pitch,
		IsActuallyScam: scenario.IsActuallyScam,
		CreatedAt:      s.now(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create battle")
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	s.logger.Info().Str("battle_id", battle.ID).Msg("battle started")
	return &StartResult{Battle: battle, ScamPitch: scenario.Pitch}, nil
}

// Resolve runs detection on a stored battle and settles it. The steps are
// issued one after another with no rollback; a failure part way leaves the
// earlier writes in place. Calling it twice on the same battle scores it twice.
func (s *BattleService) Resolve(ctx context.Context, battleID string) (*ResolveResult, error) {
	logger := s.logger.With().Str("battle_id", battleID).Logger()

	battle, err := s.battles.Get(ctx, battleID)
	if err != nil {
		return nil, err
	}

	if err := s.battles.SetStatus(ctx, battleID, domain.StatusAnalyzing); err != nil {
		logger.Error().Err(err).Msg("failed to mark battle analyzing")
		return nil, fmt.Errorf("failed to update battle status: %w", err)
	}

	verdict, err := s.resolver.Resolve(ctx, battle)
	if err != nil {
		logger.Error().Err(err).Msg("detection failed")
		return nil, err
	}

	resolved, err := s.battles.Resolve(ctx, battleID, domain.Resolution{
		DetectionResult: verdict.Detection,
		BlueTeamCorrect: verdict.BlueTeamCorrect,
		WinnerID:        verdict.WinnerID,
		PointsAwarded:   verdict.PointsAwarded,
		ResolvedAt:      s.now(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to store resolution")
		return nil, fmt.Errorf("failed to store resolution: %w", err)
	}

	if err := s.agents.IncrementStats(ctx, verdict.WinnerID, true, verdict.PointsAwarded); err != nil {
		logger.Error().Err(err).Str("agent_id", verdict.WinnerID).Msg("failed to credit winner")
		return nil, fmt.Errorf("failed to update winner stats: %w", err)
	}
	if err := s.agents.IncrementStats(ctx, verdict.LoserID, false, 0); err != nil {
		logger.Error().Err(err).Str("agent_id", verdict.LoserID).Msg("failed to record loss")
		return nil, fmt.Errorf("failed to update loser stats: %w", err)
	}

	logger.Info().
		Bool("blue_team_correct", verdict.BlueTeamCorrect).
		Str("winner_id", verdict.WinnerID).
		Int("points", verdict.PointsAwarded).
		Msg("battle resolved")

	return &ResolveResult{
		Battle:          resolved,
		DetectionResult: verdict.Detection,
		BlueTeamCorrect: verdict.BlueTeamCorrect,
		PointsAwarded:   verdict.PointsAwarded,
	}, nil
}

func (s *BattleService) Get(ctx context.Context, battleID string) (*domain.Battle, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.battles.Get(ctx, battleID)
}

// Recent lists the newest battles; limit is clamped to [1, RecentBattlesMax]
// and 0 means the default.
func (s *BattleService) Recent(ctx context.Context, limit int) ([]domain.Battle, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	switch {
	case limit == 0:
		limit = constants.RecentBattlesDefault
	case limit < 1:
		limit = 1
	case limit > constants.RecentBattlesMax:
		limit = constants.RecentBattlesMax
	}

	battles, err := s.battles.Recent(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("failed to list battles")
		return nil, err
	}
	return battles, nil
}
