package supabase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"scam-arena/internal/domain"

	"github.com/valyala/fasthttp"
)

type BattleTable struct {
	c *Client
}

func NewBattleTable(c *Client) *BattleTable {
	return &BattleTable{c: c}
}

// insertBattle leaves id and the resolution columns to database defaults.
type insertBattle struct {
	RedAgentID     string              `json:"red_agent_id"`
	BlueAgentID    string              `json:"blue_agent_id"`
	Status         domain.BattleStatus `json:"status"`
	ScamPitch      domain.ScamPitch    `json:"scam_pitch"`
	IsActuallyScam bool                `json:"is_actually_scam"`
}

type resolveBattle struct {
	Status          domain.BattleStatus    `json:"status"`
	DetectionResult domain.DetectionResult `json:"detection_result"`
	BlueTeamCorrect bool                   `json:"blue_team_correct"`
	WinnerID        string                 `json:"winner_id"`
	PointsAwarded   int                    `json:"points_awarded"`
	ResolvedAt      string                 `json:"resolved_at"`
}

func (t *BattleTable) Create(ctx context.Context, battle *domain.Battle) (*domain.Battle, error) {
	key, err := t.c.adminKey()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "*")

	var rows []domain.Battle
	err = t.c.do(ctx, request{
		method: fasthttp.MethodPost,
		path:   "battles",
		query:  q,
		key:    key,
		body: insertBattle{
			RedAgentID:     battle.RedAgentID,
			BlueAgentID:    battle.BlueAgentID,
			Status:         battle.Status,
			ScamPitch:      battle.ScamPitch,
			IsActuallyScam: battle.IsActuallyScam,
		},
		returnRows: true,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no battle", domain.ErrUpstream)
	}
	return &rows[0], nil
}

func (t *BattleTable) Get(ctx context.Context, id string) (*domain.Battle, error) {
	key, err := t.c.adminKey()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", eq(id))

	var rows []domain.Battle
	if err := t.c.do(ctx, request{method: fasthttp.MethodGet, path: "battles", query: q, key: key}, &rows); err != nil {
		if rejectedFilter(err) {
			return nil, fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}
	return &rows[0], nil
}

func (t *BattleTable) Recent(ctx context.Context, limit int) ([]domain.Battle, error) {
	key, err := t.c.readKey()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))

	battles := []domain.Battle{}
	if err := t.c.do(ctx, request{method: fasthttp.MethodGet, path: "battles", query: q, key: key}, &battles); err != nil {
		return nil, err
	}
	return battles, nil
}

func (t *BattleTable) SetStatus(ctx context.Context, id string, status domain.BattleStatus) error {
	key, err := t.c.adminKey()
	if err != nil {
		return err
	}

	q := url.Values{}
	q.Set("id", eq(id))

	return t.c.do(ctx, request{
		method: fasthttp.MethodPatch,
		path:   "battles",
		query:  q,
		key:    key,
		body:   map[string]any{"status": status},
	}, nil)
}

func (t *BattleTable) Resolve(ctx context.Context, id string, res domain.Resolution) (*domain.Battle, error) {
	key, err := t.c.adminKey()
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("id", eq(id))
	q.Set("select", "*")

	var rows []domain.Battle
	err = t.c.do(ctx, request{
		method: fasthttp.MethodPatch,
		path:   "battles",
		query:  q,
		key:    key,
		body: resolveBattle{
			Status:          domain.StatusResolved,
			DetectionResult: res.DetectionResult,
			BlueTeamCorrect: res.BlueTeamCorrect,
			WinnerID:        res.WinnerID,
			PointsAwarded:   res.PointsAwarded,
			ResolvedAt:      res.ResolvedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
		returnRows: true,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("battle %s: %w", id, domain.ErrNotFound)
	}
	return &rows[0], nil
}
