package attack

import (
	"log/slog"

	"github.com/wanheng20031114/whgame-Tetris/internal/dependencies/random"
	"github.com/wanheng20031114/whgame-Tetris/internal/model"
)

// WeightedProbability is the chance the target draw is biased toward higher
// scores instead of uniform.
const WeightedProbability = 0.3

// Router selects garbage-attack targets among living opponents
type Router struct {
	random random.Random
	logger *slog.Logger
}

// NewRouter creates an attack router
func NewRouter(rnd random.Random, logger *slog.Logger) *Router {
	return &Router{
		random: rnd,
		logger: logger.With(slog.String("component", "attack")),
	}
}

// SelectTarget picks the recipient of a garbage attack launched by attacker.
// Candidates are all living roster members except the attacker. Returns nil
// when no candidate exists (the attack is silently dropped).
//
// With probability 0.7 the target is uniform across candidates; with
// probability 0.3 it is drawn proportionally to score+1, so a zero-score
// player still has nonzero weight.
func (r *Router) SelectTarget(room *model.Room, attacker model.PlayerID) *model.RoomPlayer {
	var candidates []*model.RoomPlayer
	for _, p := range room.Players {
		if p.ID != attacker && p.Alive {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	if r.random.Float64() >= WeightedProbability {
		return candidates[r.random.Intn(len(candidates))]
	}
	return r.weightedPick(candidates)
}

// weightedPick draws a candidate with probability proportional to score+1
func (r *Router) weightedPick(candidates []*model.RoomPlayer) *model.RoomPlayer {
	total := 0
	for _, c := range candidates {
		total += c.Score + 1
	}
	remainder := r.random.Float64() * float64(total)
	for _, c := range candidates {
		remainder -= float64(c.Score + 1)
		if remainder <= 0 {
			return c
		}
	}
	// Floating-point drift exhausted the walk; fall back to the last candidate
	return candidates[len(candidates)-1]
}
