package router

import (
	"github.com/Payphone-Digital/openpayments/config"
	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/internal/handler"
	"github.com/Payphone-Digital/openpayments/internal/middleware"
	"github.com/Payphone-Digital/openpayments/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	datasetHandler *handler.DatasetHandler
	healthHandler  *handler.HealthHandler
	datasets       *model.Registry
	Config         *config.Config
}

func NewRouter(
	dataset *handler.DatasetHandler,
	health *handler.HealthHandler,
	datasets *model.Registry,
	config *config.Config,
) *Router {
	return &Router{
		datasetHandler: dataset,
		healthHandler:  health,
		datasets:       datasets,
		Config:         config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.Config.App.Environment == constants.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestContext())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	router.GET(constants.PathHealth, r.healthHandler.HealthCheck)
	router.GET(constants.PathMetrics, gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	api.Use(middleware.RateLimit(r.Config.RateLimit.Request, r.Config.RateLimit.Duration))
	r.datasetRoutes(api)

	return router
}

func (r *Router) datasetRoutes(rg *gin.RouterGroup) {
	for _, ds := range r.datasets.All() {
		rg.GET(ds.Path(), r.datasetHandler.List(ds.Name))
	}
}
