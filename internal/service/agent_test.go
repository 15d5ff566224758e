package service

import (
	"context"
	"testing"

	"scam-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentServiceCreate(t *testing.T) {
	svc := NewAgentService(newMemAgents(), zerolog.Nop())

	a, err := svc.Create(context.Background(), "  Scammer-42 ", "red_team")
	require.NoError(t, err)
	assert.Equal(t, "Scammer-42", a.Name)
	assert.Equal(t, domain.RedTeam, a.Type)
}

func TestAgentServiceCreateValidation(t *testing.T) {
	svc := NewAgentService(newMemAgents(), zerolog.Nop())

	_, err := svc.Create(context.Background(), "x", "green_team")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), "   ", "blue_team")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAgentServiceListFilters(t *testing.T) {
	store := newMemAgents()
	store.add("r1", domain.RedTeam)
	store.add("b1", domain.BlueTeam)
	store.agents["b1"].Points = 30
	store.add("b2", domain.BlueTeam)
	store.agents["b2"].Points = 50
	svc := NewAgentService(store, zerolog.Nop())

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	blues, err := svc.List(context.Background(), "blue_team")
	require.NoError(t, err)
	require.Len(t, blues, 2)
	assert.Equal(t, "b2", blues[0].ID)

	none, err := svc.List(context.Background(), "admins")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
