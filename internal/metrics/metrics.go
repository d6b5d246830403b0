package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "form_engine"

// Registry groups the collectors exported by the service. A nil *Registry is
// valid and records nothing.
type Registry struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	fieldMutations    *prometheus.CounterVec
	fieldCorruptions  prometheus.Counter
	orderConflicts    prometheus.Counter
	responseWrites    *prometheus.CounterVec
	rejectedResponses *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "pattern", "status"}),
		fieldMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_mutations_total",
			Help:      "Committed structural field mutations by operation.",
		}, []string{"operation"}),
		fieldCorruptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_list_corruptions_total",
			Help:      "Field lists whose linked order could not be fully reconstructed.",
		}),
		orderConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_order_conflicts_total",
			Help:      "Structural field mutations rejected by the revision check.",
		}),
		responseWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_writes_total",
			Help:      "Persisted responses by resulting state.",
		}, []string{"state"}),
		rejectedResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_rejections_total",
			Help:      "Rejected response writes by reason.",
		}, []string{"reason"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.fieldMutations,
		r.fieldCorruptions,
		r.orderConflicts,
		r.responseWrites,
		r.rejectedResponses,
	)

	return r
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) ObserveRequest(method, pattern string, status int) {
	if r == nil {
		return
	}
	if pattern == "" {
		pattern = "unmatched"
	}
	r.requests.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
}

func (r *Registry) FieldMutation(operation string) {
	if r == nil {
		return
	}
	r.fieldMutations.WithLabelValues(operation).Inc()
}

func (r *Registry) FieldListCorrupted() {
	if r == nil {
		return
	}
	r.fieldCorruptions.Inc()
}

func (r *Registry) FieldOrderConflict() {
	if r == nil {
		return
	}
	r.orderConflicts.Inc()
}

func (r *Registry) ResponseWritten(state string) {
	if r == nil {
		return
	}
	r.responseWrites.WithLabelValues(state).Inc()
}

func (r *Registry) ResponseRejected(reason string) {
	if r == nil {
		return
	}
	r.rejectedResponses.WithLabelValues(reason).Inc()
}
