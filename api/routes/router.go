package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ventahub/ventahub-backend/api/controllers"
	"github.com/ventahub/ventahub-backend/api/middleware"
	channelsvc "github.com/ventahub/ventahub-backend/internal/channels"
	inventorysvc "github.com/ventahub/ventahub-backend/internal/inventory"
	ordersvc "github.com/ventahub/ventahub-backend/internal/orders"
	syncsvc "github.com/ventahub/ventahub-backend/internal/sync"
	"github.com/ventahub/ventahub-backend/pkg/config"
	"github.com/ventahub/ventahub-backend/pkg/db"
	"github.com/ventahub/ventahub-backend/pkg/logger"
	"github.com/ventahub/ventahub-backend/pkg/redis"
)

// Services collects everything the router exposes over HTTP.
type Services struct {
	Orders    ordersvc.Service
	Inventory inventorysvc.Service
	Channels  channelsvc.Service
	Sync      syncsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database *db.Client,
	cache redis.Pinger,
	gatherer prometheus.Gatherer,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cache))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/manual", controllers.CreateManualOrder(services.Orders, logg))
			r.Get("/", controllers.ListOrders(services.Orders, logg))
			r.Patch("/{id}/status", controllers.UpdateOrderStatus(services.Orders, logg))
		})

		r.Route("/inventories", func(r chi.Router) {
			r.Put("/", controllers.SetStock(services.Inventory, logg))
			r.Get("/", controllers.ListStock(services.Inventory, logg))
		})

		r.Route("/channels", func(r chi.Router) {
			r.Post("/", controllers.ConnectChannel(services.Channels, logg))
			r.Get("/", controllers.ListChannels(services.Channels, logg))
			r.Post("/{id}/test", controllers.TestChannel(services.Channels, logg))
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", controllers.SyncStatus(services.Sync, logg))
			r.Post("/{resource}", controllers.TriggerSync(services.Sync, logg))
		})
	})

	return r
}
