package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics counts cache lookups by backend and outcome.
type CacheMetrics struct {
	lookups *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by backend and result (hit, miss, error).",
	}, []string{"backend", "result"})
	reg.MustRegister(lookups)
	return &CacheMetrics{lookups: lookups}
}

func (m *CacheMetrics) Hit(backend string)   { m.inc(backend, "hit") }
func (m *CacheMetrics) Miss(backend string)  { m.inc(backend, "miss") }
func (m *CacheMetrics) Error(backend string) { m.inc(backend, "error") }

func (m *CacheMetrics) inc(backend, result string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(backend), result).Inc()
}

// LimiterMetrics counts rate limiter decisions per scope.
type LimiterMetrics struct {
	decisions *prometheus.CounterVec
}

func NewLimiterMetrics(reg prometheus.Registerer) *LimiterMetrics {
	if reg == nil {
		return &LimiterMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_decisions_total",
		Help: "Rate limiter decisions by scope and outcome.",
	}, []string{"scope", "outcome"})
	reg.MustRegister(decisions)
	return &LimiterMetrics{decisions: decisions}
}

// Record counts one decision for scope.
func (m *LimiterMetrics) Record(scope string, allowed bool) {
	if m == nil || m.decisions == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.decisions.WithLabelValues(normalizeLabel(scope), outcome).Inc()
}
