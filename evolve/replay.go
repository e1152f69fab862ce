package evolve

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
	"github.com/pthm-cable/flock/neural"
	"github.com/pthm-cable/flock/sprites"
)

// Replay flies a single champion network through a fresh episode.
func Replay(ctx context.Context, cfg *config.Config, sheet *sprites.Sheet, weights neural.BrainWeights, seed int64, opts game.Options) (game.Result, error) {
	rng := rand.New(rand.NewSource(seed))
	nn := neural.NewFFNN(rng)
	if err := nn.UnmarshalWeights(weights); err != nil {
		return game.Result{}, fmt.Errorf("loading champion: %w", err)
	}

	deciders := []game.Decider{neural.NewBrain(nn, cfg.World.GroundY)}
	return game.RunEpisode(ctx, cfg, sheet, deciders, seed, opts)
}
