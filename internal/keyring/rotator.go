// Package keyring hands out inference API keys in round-robin order.
package keyring

import (
	"fmt"
	"strings"
	"sync"

	"scam-arena/internal/config"
	"scam-arena/internal/constants"
	"scam-arena/internal/domain"

	"github.com/rs/zerolog"
)

type Rotator struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// New keeps the candidates carrying the required prefix, in input order.
func New(candidates []string, logger zerolog.Logger) *Rotator {
	keys := make([]string, 0, len(candidates))
	for _, k := range candidates {
		if strings.HasPrefix(k, constants.APIKeyPrefix) {
			keys = append(keys, k)
			continue
		}
		logger.Warn().Str("key", config.Mask(k)).Msg("ignoring api key without expected prefix")
	}

	logger.Info().Int("keys", len(keys)).Int("candidates", len(candidates)).Msg("key rotator initialized")
	return &Rotator{keys: keys}
}

func NewFromConfig(cfg *config.Config, logger zerolog.Logger) *Rotator {
	return New(cfg.CerebrasAPIKeys, logger)
}

// Next returns the key under the cursor and advances it, wrapping at the end.
func (r *Rotator) Next() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return "", fmt.Errorf("%w: no valid Cerebras API keys found, keys must start with %q",
			domain.ErrConfiguration, constants.APIKeyPrefix)
	}

	key := r.keys[r.cursor]
	r.cursor = (r.cursor + 1) % len(r.keys)
	return key, nil
}
