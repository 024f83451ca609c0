package utils

import (
	"time"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Request handling
const (
	// DefaultRequestTimeout bounds every request-scoped context created by handlers
	DefaultRequestTimeout = 30 * time.Second

	// ExportRequestTimeout is used for workbook and PDF rendering endpoints
	ExportRequestTimeout = 60 * time.Second
)

// Cache keys, prefixed with CacheConfig.RedisPrefix at use sites
const (
	SupplierMetricsCacheKey = "supplier_metrics"
	QuoteAutoSelectLockKey  = "quote_auto_select_lock"
)

// Scoring defaults
const (
	DefaultRecommendationLimit = 5
	DefaultCapacityBonusMax    = 5
	DefaultMarkupPercent       = 30.0
	DefaultMetricsCacheTTL     = 10 * time.Minute
	DefaultMetricFetchWorkers  = 8
)
