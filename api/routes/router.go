package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/discountsync/api/controllers"
	"github.com/angelmondragon/discountsync/api/middleware"
	"github.com/angelmondragon/discountsync/pkg/config"
	"github.com/angelmondragon/discountsync/pkg/i18n"
	"github.com/angelmondragon/discountsync/pkg/logger"
)

// Deps groups what the inspection surface reads from. RedisPinger and
// Gatherer are optional.
type Deps struct {
	Store       controllers.StoreView
	Selection   controllers.ScopeSelector
	Translator  i18n.Translator
	RedisPinger controllers.Pinger
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	tr := deps.Translator
	if tr == nil {
		tr = i18n.Fallback{}
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.RedisPinger))
	})

	if cfg.Metrics.Enabled && deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", controllers.State(deps.Store))
		r.Post("/refresh", controllers.Refresh(deps.Store, tr, logg))
		r.Post("/selection", controllers.SelectScope(deps.Selection, logg))
		r.Get("/discounts", controllers.Discounts(deps.Store, logg))
		r.Get("/discounts/{discountId}", controllers.DiscountByID(deps.Store, tr, logg))
	})

	return r
}
