package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/KusumaMurthy109/Elysian/pkg/logger"
)

// feedbackWeights skews generated feedback toward LIKE, roughly matching how
// people rate places they chose to visit.
const (
	feedbackDivisor    = 10
	likeThreshold      = 5
	neutralThreshold   = 8
	preferredDivisor   = 2
	cityPoolPerUserCap = 64
)

// randomInt returns a random int in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// randomFeedback picks LIKE, NEUTRAL, or DISLIKE with a LIKE bias.
func randomFeedback() string {
	switch v := randomInt(feedbackDivisor); {
	case v < likeThreshold:
		return "LIKE"
	case v < neutralThreshold:
		return "NEUTRAL"
	default:
		return "DISLIKE"
	}
}

// randomSide picks which side of a comparison the synthetic user prefers.
func randomSide() string {
	if randomInt(preferredDivisor) == 0 {
		return "new"
	}
	return "existing"
}

// userPlan is the set of cities one synthetic user will rate, in order.
type userPlan struct {
	UserID string
	Cities []string
}

// generatePlans builds per-user rating plans with unique user ids and a
// shared city pool, so global ratings see overlapping cities.
func generatePlans(ctx context.Context, config *Config) ([]userPlan, error) {
	poolSize := config.CitiesPerUser
	if poolSize > cityPoolPerUserCap {
		poolSize = cityPoolPerUserCap
	}
	pool := make([]string, poolSize*2)
	for i := range pool {
		pool[i] = fmt.Sprintf("city_%03d", i)
	}

	plans := make([]userPlan, config.NumUsers)
	for i := range plans {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during plan generation: %w", err)
		}

		cities := make([]string, 0, config.CitiesPerUser)
		seen := make(map[string]struct{}, config.CitiesPerUser)
		for len(cities) < config.CitiesPerUser {
			id := pool[randomInt(int64(len(pool)))]
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			cities = append(cities, id)
		}

		plans[i] = userPlan{
			UserID: uuid.New().String(),
			Cities: cities,
		}
	}

	logger.Get().Info(ctx, "generated rating plans",
		logger.Int("users", len(plans)),
		logger.Int("citiesPerUser", config.CitiesPerUser))

	return plans, nil
}
