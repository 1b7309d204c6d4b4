package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
)

// Options carries everything the router needs to assemble the route
// table.
type Options struct {
	Auth         *api.AuthHandler
	Users        *api.UserHandler
	Catalog      *api.CatalogHandler
	Recipes      *api.RecipeHandler
	Interactions *api.InteractionHandler
	RateLimiter  *middleware.RateLimiter
	Logger       *logrus.Logger
	CORSOrigins  []string
}

// New builds the Gin engine with CORS, request logging and all route
// groups registered.
func New(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.Logger != nil {
		router.Use(middleware.RequestLogger(opts.Logger))
	}

	corsConfig := cors.DefaultConfig()
	if len(opts.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = opts.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.MaxAge = 24 * time.Hour
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api")
	if opts.RateLimiter != nil {
		v1.Use(opts.RateLimiter.Middleware())
	}

	opts.Auth.RegisterRoutes(v1)
	opts.Users.RegisterRoutes(v1)
	opts.Catalog.RegisterRoutes(v1)
	opts.Recipes.RegisterRoutes(v1)
	opts.Interactions.RegisterRoutes(v1)
	opts.Recipes.RegisterShortLinkRoute(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
