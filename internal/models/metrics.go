package models

import "time"

// SystemMetrics is a lightweight runtime snapshot exposed on the ops surface.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	NotificationsDelivered   uint64    `json:"notificationsDelivered"`
	NotificationsFailed      uint64    `json:"notificationsFailed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
