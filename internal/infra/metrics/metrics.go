// Package metrics provides Prometheus metrics for Nutrio.
// Counters, gauges and histograms for grants, levels, achievements,
// persistence conflicts, HTTP traffic and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every Nutrio metric.
const Namespace = "nutrio"

// ─── Grants ─────────────────────────────────────────────────────────────────

// XPGranted tracks XP actually granted (post-cap) by reward source.
var XPGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "xp_granted_total",
	Help:      "Total XP granted after multipliers and caps.",
}, []string{"source"})

// XPClamped tracks XP withheld by daily caps, by cap bucket.
var XPClamped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "xp_clamped_total",
	Help:      "Total XP withheld by daily caps.",
}, []string{"bucket"})

// GrantsRejected tracks grants refused by validation, by reason.
var GrantsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "grants_rejected_total",
	Help:      "Total reward grants rejected by validation.",
}, []string{"reason"})

// GrantLatency tracks end-to-end grant duration including persistence.
var GrantLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: Namespace,
	Name:      "grant_latency_seconds",
	Help:      "Reward grant duration in seconds, including persistence.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// ─── Levels & Achievements ──────────────────────────────────────────────────

// LevelUps tracks levels gained across all users.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "level_ups_total",
	Help:      "Total levels gained.",
})

// AchievementsUnlocked tracks first-time unlocks by achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "achievements_unlocked_total",
	Help:      "Total first-time achievement unlocks.",
}, []string{"achievement"})

// ─── Persistence ────────────────────────────────────────────────────────────

// StateConflicts tracks optimistic-concurrency conflicts on save.
var StateConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "state_conflicts_total",
	Help:      "Total compare-and-swap conflicts when saving progression state.",
})

// DailyBucketsPruned tracks stale daily cap entries removed by the prune job.
var DailyBucketsPruned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "daily_buckets_pruned_total",
	Help:      "Users whose stale daily cap entries were pruned.",
})

// ─── Notifications ──────────────────────────────────────────────────────────

// NotificationsSent tracks notifications stored, by type.
var NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "notifications_sent_total",
	Help:      "Total notifications created.",
}, []string{"type"})

// NotificationsSuppressed tracks notifications dropped by policy.
var NotificationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "notifications_suppressed_total",
	Help:      "Total notifications suppressed by policy.",
}, []string{"reason"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests tracks API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "http_requests_total",
	Help:      "Total HTTP requests.",
}, []string{"route", "status"})

// RateLimited tracks requests refused by the per-user limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "http_rate_limited_total",
	Help:      "Total requests refused by the per-user rate limiter.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks the last result of each health check (1 healthy, 0 not).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: Namespace,
	Name:      "health_check_status",
	Help:      "Last health check result (1 healthy, 0 unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks recovery attempts by check name.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "health_recoveries_total",
	Help:      "Total health-check recovery attempts.",
}, []string{"check"})
