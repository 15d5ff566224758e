package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"scam-arena/internal/domain"
	"scam-arena/internal/llmjson"
	"scam-arena/internal/service"

	"github.com/rs/zerolog"
)

type ArenaServer struct {
	agentSvc  *service.AgentService
	battleSvc *service.BattleService
}

func NewArenaServer(agentSvc *service.AgentService, battleSvc *service.BattleService) *ArenaServer {
	return &ArenaServer{agentSvc: agentSvc, battleSvc: battleSvc}
}

// Register mounts every route on mux, both bare and under /api.
func (s *ArenaServer) Register(mux *http.ServeMux) {
	for _, prefix := range []string{"", "/api"} {
		mux.HandleFunc("GET "+prefix+"/agents", s.ListAgents)
		mux.HandleFunc("POST "+prefix+"/agents", s.CreateAgent)
		mux.HandleFunc("POST "+prefix+"/battle/start", s.StartBattle)
		mux.HandleFunc("POST "+prefix+"/battle/resolve", s.ResolveBattle)
		mux.HandleFunc("GET "+prefix+"/battles", s.RecentBattles)
		mux.HandleFunc("GET "+prefix+"/battles/{id}", s.GetBattle)
	}
	mux.HandleFunc("GET /healthz", s.Health)
}

type createAgentRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type startBattleRequest struct {
	RedAgentID  string `json:"redAgentId"`
	BlueAgentID string `json:"blueAgentId"`
	ScamType    string `json:"scamType,omitempty"`
}

type resolveBattleRequest struct {
	BattleID string `json:"battleId"`
}

type startBattleResponse struct {
	Battle    *domain.Battle   `json:"battle"`
	ScamPitch domain.ScamPitch `json:"scamPitch"`
}

type resolveBattleResponse struct {
	Battle          *domain.Battle         `json:"battle"`
	DetectionResult domain.DetectionResult `json:"detectionResult"`
	BlueTeamCorrect bool                   `json:"blueTeamCorrect"`
	PointsAwarded   int                    `json:"pointsAwarded"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *ArenaServer) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.agentSvc.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err, "Failed to get agents", "")
		return
	}
	if agents == nil {
		agents = []domain.Agent{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"agents": agents})
}

func (s *ArenaServer) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, "Failed to create agent", "")
		return
	}

	agent, err := s.agentSvc.Create(r.Context(), req.Name, req.Type)
	if err != nil {
		writeError(w, r, err, "Failed to create agent", "")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"agent": agent})
}

func (s *ArenaServer) StartBattle(w http.ResponseWriter, r *http.Request) {
	var req startBattleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, "Failed to start battle", "")
		return
	}

	res, err := s.battleSvc.Start(r.Context(), service.StartRequest{
		RedAgentID:  req.RedAgentID,
		BlueAgentID: req.BlueAgentID,
		ScamType:    req.ScamType,
	})
	if err != nil {
		writeError(w, r, err, "Failed to start battle", "Agents not found")
		return
	}
	writeJSON(w, r, http.StatusOK, startBattleResponse{Battle: res.Battle, ScamPitch: res.ScamPitch})
}

func (s *ArenaServer) ResolveBattle(w http.ResponseWriter, r *http.Request) {
	var req resolveBattleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err, "Failed to resolve battle", "")
		return
	}

	res, err := s.battleSvc.Resolve(r.Context(), req.BattleID)
	if err != nil {
		writeError(w, r, err, "Failed to resolve battle", "Battle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, resolveBattleResponse{
		Battle:          res.Battle,
		DetectionResult: res.DetectionResult,
		BlueTeamCorrect: res.BlueTeamCorrect,
		PointsAwarded:   res.PointsAwarded,
	})
}

func (s *ArenaServer) RecentBattles(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("limit %q: %w", raw, domain.ErrValidation), "Failed to get battles", "")
			return
		}
		limit = n
	}

	battles, err := s.battleSvc.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err, "Failed to get battles", "")
		return
	}
	if battles == nil {
		battles = []domain.Battle{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"battles": battles})
}

func (s *ArenaServer) GetBattle(w http.ResponseWriter, r *http.Request) {
	battle, err := s.battleSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to get battle", "Battle not found")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"battle": battle})
}

func (s *ArenaServer) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// writeError maps err onto the response. notFound is used for ErrNotFound
// when set; parse and configuration failures keep their own message, every
// other failure collapses to fallback.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback, notFound string) {
	logger := zerolog.Ctx(r.Context())

	var perr *llmjson.ParseError
	switch {
	case notFound != "" && errors.Is(err, domain.ErrNotFound):
		logger.Warn().Err(err).Msg(notFound)
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: notFound})
	case errors.As(err, &perr):
		logger.Error().Err(err).Str("raw", perr.Raw).Msg(fallback)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: perr.Reason})
	case errors.Is(err, domain.ErrConfiguration):
		logger.Error().Err(err).Msg(fallback)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		logger.Error().Err(err).Msg(fallback)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to write response")
	}
}
