package simulate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/KusumaMurthy109/Elysian/pkg/logger"
)

// maxComparisonsGuard aborts a flow that somehow never reaches done. The
// binary search over n ranked cities needs at most ceil(log2(n+1)) answers,
// so anything past this bound indicates a server-side defect.
const maxComparisonsGuard = 64

// runFlows drives every planned rating flow through the HTTP API using a
// worker pool. One flow is a /rate-city call followed by /compare-cities
// answers until the envelope reports done.
func runFlows(ctx context.Context, config *Config, plans []userPlan, stats *Stats) ([]FlowRecord, error) {
	client := newHTTPClient(config.Timeout)

	var (
		started     int64
		completed   int64
		failed      int64
		comparisons int64
	)

	planChan := make(chan userPlan, config.Workers)
	recordChan := make(chan FlowRecord, config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for plan := range planChan {
				// A user's flows are sequential: each rating builds on
				// the ranked list left by the previous one.
				for _, cityID := range plan.Cities {
					select {
					case <-ctx.Done():
						return
					default:
					}

					atomic.AddInt64(&started, 1)
					record, err := driveFlow(ctx, client, config, plan.UserID, cityID)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							logger.Get().Warn(ctx, "flow failed",
								logger.String("user_id", plan.UserID),
								logger.String("city_id", cityID),
								logger.Error(err))
						}
						continue
					}

					atomic.AddInt64(&completed, 1)
					atomic.AddInt64(&comparisons, int64(record.Comparisons))
					recordChan <- record
				}
			}
		}()
	}

	go func() {
		defer close(planChan)
		for _, plan := range plans {
			select {
			case <-ctx.Done():
				return
			case planChan <- plan:
			}
		}
	}()

	done := make(chan struct{})
	records := make([]FlowRecord, 0, len(plans)*config.CitiesPerUser)
	go func() {
		defer close(done)
		for record := range recordChan {
			records = append(records, record)
		}
	}()

	wg.Wait()
	close(recordChan)
	<-done

	stats.FlowsStarted = int(atomic.LoadInt64(&started))
	stats.FlowsCompleted = int(atomic.LoadInt64(&completed))
	stats.FlowsFailed = int(atomic.LoadInt64(&failed))
	stats.ComparisonsTotal = int(atomic.LoadInt64(&comparisons))

	logger.Get().Info(ctx, "flow submission completed",
		logger.Int("completed", stats.FlowsCompleted),
		logger.Int("failed", stats.FlowsFailed),
		logger.Int("comparisons", stats.ComparisonsTotal))

	return records, nil
}

// driveFlow runs one rating flow to completion and returns its record.
func driveFlow(ctx context.Context, client *httpClient, config *Config, userID, cityID string) (FlowRecord, error) {
	feedback := randomFeedback()

	envelope, err := client.PostJSON(ctx, config.BaseURL+"/rate-city", map[string]string{
		"user_id":  userID,
		"city_id":  cityID,
		"feedback": feedback,
	})
	if err != nil {
		return FlowRecord{}, fmt.Errorf("rate-city: %w", err)
	}

	comparisons := 0
	for envelope.Status == "compare" {
		if comparisons >= maxComparisonsGuard {
			return FlowRecord{}, fmt.Errorf("flow exceeded %d comparisons without finishing", maxComparisonsGuard)
		}
		comparisons++

		envelope, err = client.PostJSON(ctx, config.BaseURL+"/compare-cities", map[string]string{
			"user_id":   userID,
			"preferred": randomSide(),
		})
		if err != nil {
			return FlowRecord{}, fmt.Errorf("compare-cities: %w", err)
		}
	}

	if envelope.Status != "done" {
		return FlowRecord{}, fmt.Errorf("unexpected terminal status %q: %s", envelope.Status, envelope.Message)
	}
	if envelope.RatingValue == nil {
		return FlowRecord{}, fmt.Errorf("done envelope missing ratingValue")
	}

	return FlowRecord{
		UserID:      userID,
		CityID:      cityID,
		Feedback:    feedback,
		Comparisons: comparisons,
		RatingValue: *envelope.RatingValue,
	}, nil
}
