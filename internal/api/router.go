package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/athebyme/gomarket-storefront/internal/api/handlers"
	"github.com/athebyme/gomarket-storefront/internal/api/middleware"
	"github.com/athebyme/gomarket-storefront/internal/domain/services"
	"github.com/athebyme/gomarket-storefront/pkg/interfaces"
)

// RouterConfig параметры HTTP слоя
type RouterConfig struct {
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	RateLimit          int
	RateWindow         time.Duration
	// Metrics nil отключает /metrics и сбор метрик HTTP
	Metrics *prometheus.Registry
	Swagger bool
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(
	productService services.ProductServiceInterface,
	logger interfaces.LoggerPort,
	cfg RouterConfig,
) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.ForwardHeaders)
	r.Use(chimiddleware.RealIP)
	if cfg.Metrics != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Metrics).Handler)
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateWindow))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{}))
	}

	if cfg.Swagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	productHandler := handlers.NewProductHandler(productService, logger)

	// Маршруты для продуктов
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.ListProducts)
		r.Post("/", productHandler.CreateProduct)

		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", productHandler.GetProduct)
			r.Put("/", productHandler.UpdateProduct)
			r.Delete("/", productHandler.DeleteProduct)
			r.Get("/related", productHandler.GetProductWithRelated)
		})
	})

	return r
}
