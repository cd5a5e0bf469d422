package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vancho-go/ipreverser/internal/app/config"
	"github.com/vancho-go/ipreverser/internal/app/handlers"
	"github.com/vancho-go/ipreverser/internal/app/metrics"
	"github.com/vancho-go/ipreverser/internal/app/storage"
)

// Deps holds what the routes need. Store, Metrics and Gatherer are required;
// Resolver and Locator may be nil.
type Deps struct {
	Store    storage.HistoryStore
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Resolver handlers.PTRLookuper
	Locator  handlers.CountryLocator
	CORS     config.CORSConfig
	Logger   *slog.Logger
}

// New wires the HTTP surface. Store calls go through the metrics decorator.
func New(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := deps.Metrics.InstrumentStore(deps.Store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(deps.Metrics.Middleware)
	r.Use(cors(deps.CORS))

	reverseFromRequest := handlers.ReverseIPFromRequest(store, deps.Metrics, handlers.DefaultSources)
	r.Get("/", reverseFromRequest)
	r.Get("/reverse-ip", reverseFromRequest)
	r.Post("/reverse-ip", handlers.ReverseIPFromBody(store, deps.Metrics))
	r.Get("/history", handlers.GetHistory(store))
	r.Delete("/clear-history", handlers.ClearHistory(store))
	r.Get("/lookup", handlers.Lookup(deps.Resolver, deps.Locator, handlers.DefaultSources))

	r.Get("/health", handlers.Health())
	r.Get("/ready", handlers.Ready(store))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	return r
}
