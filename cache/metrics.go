package cache

import "expvar"

// Metrics publishes cache counters through expvar under a single map, e.g.
//
//	"tempalloc": {"live_bytes": 4096, "allocs": 12, "hits": 40, ...}
//
// Several caches may share one Metrics; the counters are then aggregated.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	LiveBytes *expvar.Int
	Allocs    *expvar.Int
	Hits      *expvar.Int
	Releases  *expvar.Int
	Failures  *expvar.Int
}

// NewMetrics publishes (or reuses) the expvar map called name.
func NewMetrics(name string) *Metrics {
	var m *expvar.Map
	if v, ok := expvar.Get(name).(*expvar.Map); ok {
		m = v
	} else {
		m = expvar.NewMap(name)
	}

	return &Metrics{
		LiveBytes: metricInt(m, "live_bytes"),
		Allocs:    metricInt(m, "allocs"),
		Hits:      metricInt(m, "hits"),
		Releases:  metricInt(m, "releases"),
		Failures:  metricInt(m, "failures"),
	}
}

func metricInt(m *expvar.Map, key string) *expvar.Int {
	if v, ok := m.Get(key).(*expvar.Int); ok {
		return v
	}
	v := new(expvar.Int)
	m.Set(key, v)
	return v
}

func (m *Metrics) hit() {
	if m != nil {
		m.Hits.Add(1)
	}
}

func (m *Metrics) alloc(delta int64) {
	if m != nil {
		m.Allocs.Add(1)
		m.LiveBytes.Add(delta)
	}
}

func (m *Metrics) release() {
	if m != nil {
		m.Releases.Add(1)
	}
}

func (m *Metrics) bulk(n int, bytes int64) {
	if m != nil && n > 0 {
		m.Releases.Add(int64(n))
		m.LiveBytes.Add(-bytes)
	}
}

func (m *Metrics) failure() {
	if m != nil {
		m.Failures.Add(1)
	}
}
