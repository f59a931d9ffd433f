package simulate

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/KusumaMurthy109/Elysian/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes a complete simulation: health check, plan generation, flow
// submission, invariant verification, and output capture.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting rating simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("users", config.NumUsers),
		logger.Int("citiesPerUser", config.CitiesPerUser),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	plans, err := generatePlans(ctx, config)
	if err != nil {
		return fmt.Errorf("plan generation failed: %w", err)
	}

	records, err := runFlows(ctx, config, plans, stats)
	if err != nil {
		return fmt.Errorf("flow submission failed: %w", err)
	}

	if err := verifyResults(ctx, records); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}
	displayScoreSummary(ctx, records)

	if err := saveRecordsToFile(ctx, config, records); err != nil {
		logger.Get().Warn(ctx, "failed to save flow records", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveRecordsToFile writes the completed flow records to a JSON file.
func saveRecordsToFile(ctx context.Context, config *Config, records []FlowRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "simulated_flows_" + timestamp + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	logger.Get().Info(ctx, "flow records saved", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final simulation statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var flowsPerSecond float64
	if stats.Duration > 0 {
		flowsPerSecond = float64(stats.FlowsCompleted) / stats.Duration.Seconds()
	}

	var meanComparisons float64
	if stats.FlowsCompleted > 0 {
		meanComparisons = float64(stats.ComparisonsTotal) / float64(stats.FlowsCompleted)
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("flowsStarted", stats.FlowsStarted),
		logger.Int("flowsCompleted", stats.FlowsCompleted),
		logger.Int("flowsFailed", stats.FlowsFailed),
		logger.Int("comparisonsTotal", stats.ComparisonsTotal),
		logger.Float64("meanComparisons", meanComparisons),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("flowsPerSecond", flowsPerSecond))
}
