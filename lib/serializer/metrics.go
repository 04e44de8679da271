package serializer

import "github.com/VictoriaMetrics/metrics"

// loaderMetrics bundles the operation counters exposed when a Loader is
// created with CollectMetrics. The counters are global (shared by all
// metric-collecting loaders) and can be scraped via metrics.WritePrometheus.
type loaderMetrics struct {
	serializeCalls    *metrics.Counter
	serializeErrors   *metrics.Counter
	serializeBytes    *metrics.Counter
	deserializeCalls  *metrics.Counter
	deserializeErrors *metrics.Counter
}

func newLoaderMetrics() *loaderMetrics {
	return &loaderMetrics{
		serializeCalls:    metrics.GetOrCreateCounter("birch_serialize_calls_total"),
		serializeErrors:   metrics.GetOrCreateCounter("birch_serialize_errors_total"),
		serializeBytes:    metrics.GetOrCreateCounter("birch_serialize_bytes_total"),
		deserializeCalls:  metrics.GetOrCreateCounter("birch_deserialize_calls_total"),
		deserializeErrors: metrics.GetOrCreateCounter("birch_deserialize_errors_total"),
	}
}

// serializeDone records one encode operation. Safe on a nil receiver so the
// hot path needs no metrics check.
func (m *loaderMetrics) serializeDone(n int, err error) {
	if m == nil {
		return
	}
	m.serializeCalls.Inc()
	m.serializeBytes.Add(n)
	if err != nil {
		m.serializeErrors.Inc()
	}
}

// deserializeDone records one decode operation.
func (m *loaderMetrics) deserializeDone(err error) {
	if m == nil {
		return
	}
	m.deserializeCalls.Inc()
	if err != nil {
		m.deserializeErrors.Inc()
	}
}
