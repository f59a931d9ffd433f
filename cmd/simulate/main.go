package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/KusumaMurthy109/Elysian/internal/simulate"
)

// Default configuration constants.
const (
	defaultNumUsers      = 100
	defaultCitiesPerUser = 10
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultRunTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:8080", "Base URL of the service")
		numUsers      = flag.Int("users", defaultNumUsers, "Number of synthetic users")
		citiesPerUser = flag.Int("cities", defaultCitiesPerUser, "Cities each user rates")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile    = flag.String("output", "", "Output file for flow records (default: simulated_flows_TIMESTAMP.json)")
		logFile       = flag.String("log", "", "Log file for run output (default: simulate_log_TIMESTAMP.log)")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := simulate.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:       *baseURL,
		NumUsers:      *numUsers,
		CitiesPerUser: *citiesPerUser,
		Workers:       *workers,
		Timeout:       *timeout,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
