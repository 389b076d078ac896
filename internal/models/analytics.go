package models

import "time"

// SystemMetrics is the aggregate counter snapshot served by the
// analytics endpoints awaiting a proper dashboard.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	OptimizeRuns             uint64    `json:"optimizeRuns"`
	LastDraftClasses         uint64    `json:"lastDraftClasses"`
	LastDraftConflicts       uint64    `json:"lastDraftConflicts"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
