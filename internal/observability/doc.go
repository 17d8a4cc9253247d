// Package observability provides logging and metrics support for the
// journal library service.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	})
//	logger = observability.WithSearchContext(logger, "quantum computing", "article")
//
// # Metrics
//
//	metrics := observability.NewMetrics("journal_library")
//	metrics.RecordSearch("article", 3, 0.002)
//	metrics.RecordContentRequest("wordpress", "posts", 0.31)
//
// # Standard Fields
//
//   - request_id, correlation_id: HTTP request identifiers
//   - query, type: search query and result type filter
//   - record_kind, record_key: journal or article and its id or slug
//   - source, endpoint: content backend and REST route
//
// All components are safe for concurrent use from multiple goroutines.
package observability
