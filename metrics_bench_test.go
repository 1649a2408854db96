package campusride

import (
	"testing"
	"time"
)

// metricFlows lists the counters one request of each workflow touches, in
// the order the engine increments them.
var metricFlows = []struct {
	name     string
	counters []MetricID
	latency  MetricID
}{
	{
		name:     "send_code",
		counters: []MetricID{MetricCodeIssued, MetricRegistrationCodeSent},
		latency:  MetricNotificationLatency,
	},
	{
		name:     "complete_registration",
		counters: []MetricID{MetricRegistrationSuccess, MetricSessionCreated},
		latency:  MetricAuthenticateLatency,
	},
	{
		name:     "code_mismatch",
		counters: []MetricID{MetricCodeMismatch, MetricRegistrationFailure},
		latency:  MetricAuthenticateLatency,
	},
	{
		name:     "login",
		counters: []MetricID{MetricLoginSuccess, MetricSessionCreated},
		latency:  MetricAuthenticateLatency,
	},
	{
		name:     "login_throttled",
		counters: []MetricID{MetricLoginFailure, MetricRateLimitHit, MetricLoginRateLimited},
		latency:  MetricAuthenticateLatency,
	},
}

func BenchmarkMetricsIncParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricLoginSuccess)
		}
	})
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricCodeIssued)
	}
}

// BenchmarkMetricsFlows runs every workflow's counter sequence from all
// goroutines at once, so neighbouring counters contend the way they do
// under mixed registration and login traffic.
func BenchmarkMetricsFlows(b *testing.B) {
	d := 3 * time.Millisecond

	for _, flow := range metricFlows {
		b.Run(flow.name, func(b *testing.B) {
			m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
			b.ReportAllocs()
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					for _, id := range flow.counters {
						m.Inc(id)
					}
					m.Observe(flow.latency, d)
				}
			})
		})
	}

	b.Run("mixed", func(b *testing.B) {
		m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
		b.ReportAllocs()
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			next := 0
			for pb.Next() {
				flow := metricFlows[next]
				for _, id := range flow.counters {
					m.Inc(id)
				}
				m.Observe(flow.latency, d)
				next++
				if next == len(metricFlows) {
					next = 0
				}
			}
		})
	})
}
