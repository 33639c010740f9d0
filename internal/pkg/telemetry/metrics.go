package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricAlertsCreated   = "business.alerts_created"
	MetricDonorsMatched   = "business.donors_matched"
	MetricDonorsNotified  = "business.donors_notified"
	MetricGeocodeFailures = "business.geocode_failures"
)
