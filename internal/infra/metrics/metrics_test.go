package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestGrantMetrics_Registered(t *testing.T) {
	XPGranted.WithLabelValues("meal_log").Add(10)
	XPClamped.WithLabelValues("meal_logging").Add(5)
	GrantsRejected.WithLabelValues("invalid_amount").Inc()
	GrantLatency.Observe(0.002)

	names := gatheredNames(t)
	for _, name := range []string{
		"nutrio_xp_granted_total",
		"nutrio_xp_clamped_total",
		"nutrio_grants_rejected_total",
		"nutrio_grant_latency_seconds",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestXPGranted_Accumulates(t *testing.T) {
	c := XPGranted.WithLabelValues("test_accumulate")
	before := testutil.ToFloat64(c)
	c.Add(15)
	c.Add(7)
	if got := testutil.ToFloat64(c) - before; got != 22 {
		t.Errorf("expected +22, got %v", got)
	}
}

func TestLevelAndAchievementMetrics(t *testing.T) {
	LevelUps.Add(9)
	AchievementsUnlocked.WithLabelValues("first_meal").Inc()
	StateConflicts.Inc()
	DailyBucketsPruned.Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"nutrio_level_ups_total",
		"nutrio_achievements_unlocked_total",
		"nutrio_state_conflicts_total",
		"nutrio_daily_buckets_pruned_total",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestHealthGauge(t *testing.T) {
	HealthCheckStatus.WithLabelValues("sqlite").Set(1)
	HealthCheckStatus.WithLabelValues("catalog").Set(0)

	if v := testutil.ToFloat64(HealthCheckStatus.WithLabelValues("sqlite")); v != 1 {
		t.Errorf("sqlite status = %v, want 1", v)
	}
	if v := testutil.ToFloat64(HealthCheckStatus.WithLabelValues("catalog")); v != 0 {
		t.Errorf("catalog status = %v, want 0", v)
	}
}
