package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL       string        // Base URL of the service
	NumUsers      int           // Number of synthetic users
	CitiesPerUser int           // Cities each user rates
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	OutputFile    string        // Output file for flow records
	LogFile       string        // Log file for run output
	Verbose       bool          // Enable verbose logging
}

// FlowRecord captures one completed rating flow for later inspection.
type FlowRecord struct {
	UserID      string  `json:"user_id"`
	CityID      string  `json:"city_id"`
	Feedback    string  `json:"feedback"`
	Comparisons int     `json:"comparisons"`
	RatingValue float64 `json:"rating_value"`
}

// flowResponse mirrors the envelope shared by /rate-city and /compare-cities.
type flowResponse struct {
	Status string `json:"status"`

	NewCity      *cityInfo `json:"newCity"`
	ExistingCity *cityInfo `json:"existingCity"`

	PersonalRatings     map[string]float64 `json:"personalRatings"`
	GlobalRatings       map[string]float64 `json:"globalRatings"`
	ComparisonIncrement *int               `json:"comparisonIncrement"`
	RatingValue         *float64           `json:"ratingValue"`

	Message string `json:"message"`
}

type cityInfo struct {
	ID      string `json:"city_id"`
	Name    string `json:"city_name"`
	Country string `json:"country_name"`
}

// Stats holds simulation statistics.
type Stats struct {
	FlowsStarted     int
	FlowsCompleted   int
	FlowsFailed      int
	ComparisonsTotal int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
