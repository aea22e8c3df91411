package authgate

import (
	"sync"
	"testing"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(true)

	m.Inc(MetricSignInSuccess)
	m.Inc(MetricSignInSuccess)
	m.Inc(MetricDenylistHit)

	snap := m.Snapshot()
	if snap[MetricSignInSuccess] != 2 {
		t.Fatalf("sign-in success: %d", snap[MetricSignInSuccess])
	}
	if snap[MetricDenylistHit] != 1 {
		t.Fatalf("denylist hit: %d", snap[MetricDenylistHit])
	}
	if snap[MetricSignUpSuccess] != 0 {
		t.Fatalf("untouched counter: %d", snap[MetricSignUpSuccess])
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(false)

	m.Inc(MetricSignInSuccess)
	if len(m.Snapshot()) != 0 {
		t.Fatal("disabled metrics produced counters")
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics

	m.Inc(MetricSignOut)
	if len(m.Snapshot()) != 0 {
		t.Fatal("nil metrics produced counters")
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(true)

	const workers, each = 8, 1000
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot()[MetricRefreshSuccess]; got != workers*each {
		t.Fatalf("refresh success: %d, want %d", got, workers*each)
	}
}
