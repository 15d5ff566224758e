package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"scam-arena/internal/api"
	"scam-arena/internal/domain"
)

type chatCall struct {
	messages []api.Message
	opts     api.ChatOptions
}

// scriptedChatter replays responses in order and records every call.
type scriptedChatter struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []chatCall
}

func (c *scriptedChatter) Chat(_ context.Context, messages []api.Message, opts api.ChatOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, chatCall{messages: messages, opts: opts})
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", fmt.Errorf("no scripted response left")
	}
	r := c.responses[0]
	c.responses = c.responses[1:]
	return r, nil
}

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type statCall struct {
	id     string
	win    bool
	points int
}

type memAgents struct {
	mu       sync.Mutex
	agents   map[string]*domain.Agent
	stats    []statCall
	statsErr error
	seq      int
}

func newMemAgents() *memAgents {
	return &memAgents{agents: map[string]*domain.Agent{}}
}

func (m *memAgents) add(id string, t domain.AgentType) {
	m.agents[id] = &domain.Agent{ID: id, Name: id, Type: t}
}

func (m *memAgents) List(_ context.Context, agentType domain.AgentType) ([]domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Agent
	for _, a := range m.agents {
		if agentType == "" || a.Type == agentType {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

func (m *memAgents) Create(_ context.Context, name string, agentType domain.AgentType) (*domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	a := &domain.Agent{ID: fmt.Sprintf("agent-%d", m.seq), Name: name, Type: agentType}
	m.agents[a.ID] = a
	cp := *a
	return &cp, nil
}

func (m *memAgents) Get(_ context.Context, id string) (*domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *memAgents) IncrementStats(_ context.Context, id string, win bool, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsErr != nil {
		return m.statsErr
	}
	a, ok := m.agents[id]
	if !ok {
		return fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	m.stats = append(m.stats, statCall{id: id, win: win, points: points})
	if win {
		a.Wins++
	} else {
		a.Losses++
	}
	a.Points += points
	return nil
}

type memBattles struct {
	mu       sync.Mutex
	battles  map[string]*domain.Battle
	statuses []domain.BattleStatus
	seq      int
}

func newMemBattles() *memBattles {
	return &memBattles{battles: map[string]*domain.Battle{}}
}

func (m *memBattles) Create(_ context.Context, b *domain.Battle) (*domain.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *b
	cp.ID = fmt.Sprintf("battle-%d", m.seq)
	m.battles[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memBattles) Get(_ context.Context, id string) (*domain.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return nil, fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (m *memBattles) Recent(_ context.Context, limit int) ([]domain.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Battle
	for _, b := range m.battles {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memBattles) SetStatus(_ context.Context, id string, status domain.BattleStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}
	b.Status = status
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memBattles) Resolve(_ context.Context, id string, res domain.Resolution) (*domain.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		return nil, fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}
	d := res.DetectionResult
	correct := res.BlueTeamCorrect
	winner := res.WinnerID
	points := res.PointsAwarded
	at := res.ResolvedAt
	b.Status = domain.StatusResolved
	b.DetectionResult = &d
	b.BlueTeamCorrect = &correct
	b.WinnerID = &winner
	b.PointsAwarded = &points
	b.ResolvedAt = &at
	m.statuses = append(m.statuses, domain.StatusResolved)
	cp := *b
	return &cp, nil
}
