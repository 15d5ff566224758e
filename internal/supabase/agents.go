package supabase

import (
	"context"
	"fmt"
	"net/url"

	"scam-arena/internal/domain"

	"github.com/valyala/fasthttp"
)

// AgentTable reads and writes the agents table and its stats procedure.
type AgentTable struct {
	c *Client
}

func NewAgentTable(c *Client) *AgentTable {
	return &AgentTable{c: c}
}

func (t *AgentTable) List(ctx context.Context, agentType domain.AgentType) ([]domain.Agent, error) {
	key, err := t.c.readKey()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "points.desc")
	if agentType != "" {
		q.Set("type", eq(string(agentType)))
	}

	agents := []domain.Agent{}
	err = t.c.do(ctx, request{method: fasthttp.MethodGet, path: "agents", query: q, key: key}, &agents)
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (t *AgentTable) Create(ctx context.Context, name string, agentType domain.AgentType) (*domain.Agent, error) {
	key, err := t.c.adminKey()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "*")

	var rows []domain.Agent
	err = t.c.do(ctx, request{
		method:     fasthttp.MethodPost,
		path:       "agents",
		query:      q,
		key:        key,
		body:       map[string]any{"name": name, "type": agentType},
		returnRows: true,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no agent", domain.ErrUpstream)
	}
	return &rows[0], nil
}

func (t *AgentTable) Get(ctx context.Context, id string) (*domain.Agent, error) {
	key, err := t.c.adminKey()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", eq(id))

	var rows []domain.Agent
	if err := t.c.do(ctx, request{method: fasthttp.MethodGet, path: "agents", query: q, key: key}, &rows); err != nil {
		if rejectedFilter(err) {
			return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("agent %s: %w", id, domain.ErrNotFound)
	}
	return &rows[0], nil
}

// IncrementStats calls the increment_agent_stats procedure, which updates
// wins/losses, points and accuracy atomically on the database side.
func (t *AgentTable) IncrementStats(ctx context.Context, id string, win bool, points int) error {
	key, err := t.c.adminKey()
	if err != nil {
		return err
	}

	return t.c.do(ctx, request{
		method: fasthttp.MethodPost,
		path:   "rpc/increment_agent_stats",
		key:    key,
		body: map[string]any{
			"agent_id": id,
			"win":      win,
			"pts":      points,
		},
	}, nil)
}
