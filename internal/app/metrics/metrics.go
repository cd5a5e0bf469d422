package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vancho-go/ipreverser/internal/app/ipaddr"
	"github.com/vancho-go/ipreverser/internal/app/models"
	"github.com/vancho-go/ipreverser/internal/app/storage"
)

const namespace = "ipreverser"

type Metrics struct {
	storeOperations *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	reversals       *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// New registers the collectors on registerer, reusing compatible collectors
// that are already registered. A nil registerer means the default one.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	storeOperations, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_operations_total",
		Help:      "History store calls by operation (create, list, clear, ping) and result (success, error).",
	}, []string{"operation", "result"}))
	if err != nil {
		return nil, err
	}

	storeDuration, err := register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "History store call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}

	reversals, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reversals_total",
		Help:      "Addresses reversed, by dialect (dotted, colon, opaque, empty).",
	}, []string{"dialect"}))
	if err != nil {
		return nil, err
	}

	httpRequests, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		storeOperations: storeOperations,
		storeDuration:   storeDuration,
		reversals:       reversals,
		httpRequests:    httpRequests,
	}, nil
}

func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) (T, error) {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			existing, ok := already.ExistingCollector.(T)
			if !ok {
				var zero T
				return zero, fmt.Errorf("register: existing collector has type %T", already.ExistingCollector)
			}
			return existing, nil
		}
		var zero T
		return zero, fmt.Errorf("register: %w", err)
	}
	return collector, nil
}

func (m *Metrics) ObserveReversal(address string) {
	m.reversals.WithLabelValues(string(ipaddr.DialectOf(address))).Inc()
}

// Middleware counts requests by chi route pattern. Unmatched routes are
// labelled "unmatched" to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// InstrumentedStore decorates a HistoryStore with call counters and latency.
type InstrumentedStore struct {
	storage.HistoryStore
	metrics *Metrics
}

func (m *Metrics) InstrumentStore(store storage.HistoryStore) *InstrumentedStore {
	return &InstrumentedStore{HistoryStore: store, metrics: m}
}

func (s *InstrumentedStore) observe(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.storeOperations.WithLabelValues(operation, result).Inc()
	s.metrics.storeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) CreateRecord(ctx context.Context, address, reversed string) (models.AddressRecord, error) {
	start := time.Now()
	record, err := s.HistoryStore.CreateRecord(ctx, address, reversed)
	s.observe("create", start, err)
	return record, err
}

func (s *InstrumentedStore) ListRecent(ctx context.Context, limit int) ([]models.AddressRecord, error) {
	start := time.Now()
	records, err := s.HistoryStore.ListRecent(ctx, limit)
	s.observe("list", start, err)
	return records, err
}

func (s *InstrumentedStore) ClearHistory(ctx context.Context) error {
	start := time.Now()
	err := s.HistoryStore.ClearHistory(ctx)
	s.observe("clear", start, err)
	return err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.HistoryStore.Ping(ctx)
	s.observe("ping", start, err)
	return err
}
