package service

import (
	"context"
	"math/rand/v2"
	"time"

	"scam-arena/internal/api"
	"scam-arena/internal/domain"
)

// AgentStore is implemented by repository.AgentRepository (SQLite) and
// supabase.AgentTable.
type AgentStore interface {
	// List with an empty type returns every agent. Ordered by points, descending.
	List(ctx context.Context, agentType domain.AgentType) ([]domain.Agent, error)
	Create(ctx context.Context, name string, agentType domain.AgentType) (*domain.Agent, error)
	Get(ctx context.Context, id string) (*domain.Agent, error)
	IncrementStats(ctx context.Context, id string, win bool, points int) error
}

type BattleStore interface {
	Create(ctx context.Context, battle *domain.Battle) (*domain.Battle, error)
	Get(ctx context.Context, id string) (*domain.Battle, error)
	Recent(ctx context.Context, limit int) ([]domain.Battle, error)
	SetStatus(ctx context.Context, id string, status domain.BattleStatus) error
	Resolve(ctx context.Context, id string, res domain.Resolution) (*domain.Battle, error)
}

// Chatter is the chat-completion call both teams go through.
type Chatter interface {
	Chat(ctx context.Context, messages []api.Message, opts api.ChatOptions) (string, error)
}

type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

func DefaultRand() RandSource { return globalRand{} }

type Clock func() time.Time

func SystemClock() Clock {
	return func() time.Time { return time.Now().UTC() }
}
