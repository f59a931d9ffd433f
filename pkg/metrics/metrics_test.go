package metrics_test

import (
	"testing"

	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("NewManager registers without panicking", func() {
			So(func() {
				metrics.NewManager(
					metrics.WithRegistry(reg),
					metrics.WithNamespace("test"),
					metrics.WithSubsystem("rating"),
				)
			}, ShouldNotPanic)
		})

		Convey("Custom buckets are accepted", func() {
			So(func() {
				metrics.NewManager(
					metrics.WithRegistry(prometheus.NewRegistry()),
					metrics.WithHistogramBuckets([]float64{1, 5, 10}),
				)
			}, ShouldNotPanic)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Recording helpers do not panic", func() {
			So(func() {
				metrics.RecordFlowStarted()
				metrics.RecordFlowFinalized()
				metrics.RecordComparison()
				metrics.RecordComparisonsPerFlow(3)
				metrics.RecordDisplayScore(7.5)
				metrics.UpdateActiveSessions(2)
				metrics.RecordSessionExpired(1)
				metrics.RecordSessionReplaced()
				metrics.RecordSessionMissing()
				metrics.UpdateCommitQueueSize(4)
				metrics.UpdateCommitQueueCapacity(100)
				metrics.UpdateCommitQueueUtilization(0.04)
				metrics.RecordCommitApplied()
				metrics.RecordCommitError()
				metrics.RecordCommitFallback()
				metrics.UpdateCommitWorkers(4)
				metrics.RecordRepositoryReadLatency(1.2)
				metrics.RecordRepositoryWriteLatency(2.3)
				metrics.RecordRepositoryError()
				metrics.RecordRecommendation()
				metrics.RecordRecommendationError()
				metrics.RecordImageLookup()
				metrics.RecordImageLookupMiss()
				metrics.RecordHTTPRequest("rate-city", "POST", "200")
				metrics.RecordHTTPRequestDuration("rate-city", "POST", "200", 3.5)
			}, ShouldNotPanic)
		})

		Convey("GetRegistry exposes the custom registry", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
