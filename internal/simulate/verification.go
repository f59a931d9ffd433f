package simulate

import (
	"context"
	"fmt"
	"math"

	"github.com/KusumaMurthy109/Elysian/pkg/logger"
)

// verifyResults checks the invariants every completed flow must satisfy:
// display scores stay on the 0..10 scale and the number of comparisons never
// exceeds the binary search bound for the user's ranked list size.
func verifyResults(ctx context.Context, records []FlowRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no completed flows to verify")
	}

	// Records for one user arrive in rating order, so the position of a
	// flow within its user's records equals the ranked list size at the
	// time the flow started.
	perUser := make(map[string]int, len(records))
	violations := 0

	for _, record := range records {
		ranked := perUser[record.UserID]
		perUser[record.UserID]++

		if record.RatingValue < 0 || record.RatingValue > 10 {
			violations++
			logger.Get().Error(ctx, "rating outside display scale",
				logger.String("user_id", record.UserID),
				logger.String("city_id", record.CityID),
				logger.Float64("rating", record.RatingValue))
			continue
		}

		bound := comparisonBound(ranked)
		if record.Comparisons > bound {
			violations++
			logger.Get().Error(ctx, "comparison count above binary search bound",
				logger.String("user_id", record.UserID),
				logger.String("city_id", record.CityID),
				logger.Int("comparisons", record.Comparisons),
				logger.Int("bound", bound),
				logger.Int("ranked", ranked))
		}
	}

	if violations > 0 {
		return fmt.Errorf("%d of %d flows violated invariants", violations, len(records))
	}

	logger.Get().Info(ctx, "all flows verified",
		logger.Int("flows", len(records)),
		logger.Int("users", len(perUser)))
	return nil
}

// comparisonBound is the worst case number of comparisons to insert into a
// ranked list of n cities.
func comparisonBound(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n + 1))))
}

// displayScoreSummary logs min, max, and mean of the observed ratings.
func displayScoreSummary(ctx context.Context, records []FlowRecord) {
	if len(records) == 0 {
		return
	}

	minScore := records[0].RatingValue
	maxScore := records[0].RatingValue
	sum := 0.0
	for _, record := range records {
		if record.RatingValue < minScore {
			minScore = record.RatingValue
		}
		if record.RatingValue > maxScore {
			maxScore = record.RatingValue
		}
		sum += record.RatingValue
	}

	logger.Get().Info(ctx, "rating distribution",
		logger.Float64("min", minScore),
		logger.Float64("max", maxScore),
		logger.Float64("mean", sum/float64(len(records))))
}
