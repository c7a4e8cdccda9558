package config

const (
	// TopicEnrichmentResult is the NSQ topic for per-worker results and the final run summary.
	TopicEnrichmentResult = "enrichment.result"
)
