// Package services holds the application layer between transport and the
// analytics pipeline. AnalysisService owns the currently loaded dataset and
// a content-addressed snapshot cache; HealthService reports process health.
package services
