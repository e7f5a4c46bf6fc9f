package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/storehouse-app/storehouse/api"
	"github.com/storehouse-app/storehouse/config"
	"github.com/storehouse-app/storehouse/internal/draftstore"
	"github.com/storehouse-app/storehouse/internal/logger"
	"github.com/storehouse-app/storehouse/internal/service/auth"
	"github.com/storehouse-app/storehouse/internal/service/booking"
	"github.com/storehouse-app/storehouse/internal/service/favorites"
	"github.com/storehouse-app/storehouse/internal/service/properties"
	"github.com/storehouse-app/storehouse/internal/service/stayflow"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

type Services struct {
	Properties properties.PropertyUseCase
	Stay       stayflow.StayUseCase
	Bookings   booking.BookingUseCase
	Favorites  favorites.FavoriteUseCase
	Auth       auth.AuthUseCase
	Drafts     draftstore.Store
	Redis      *redis.Client
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	engine, err := newEngine(cfg, svc)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	logger.Log.WithField("address", cfg.HTTP.Address).Info("http server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newEngine(cfg *config.Config, svc Services) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", api.SessionKeyHeader)
	engine.Use(cors.New(corsCfg))

	mw := api.NewMiddleware(svc.Auth)

	root := engine.Group("/api")

	authGroup := root.Group("/auth")
	if cfg.Auth.LoginRateLimit != "" {
		limitMw, err := newRateLimiter(svc.Redis, cfg.Auth.LoginRateLimit)
		if err != nil {
			return nil, err
		}
		authGroup.Use(limitMw)
	}
	api.NewAuthHandler(svc.Auth, svc.Drafts, mw).Register(authGroup)

	propertiesGroup := root.Group("/properties")
	api.NewPropertyHandler(svc.Properties).Register(propertiesGroup)

	draftsGroup := root.Group("/drafts")
	api.NewStayHandler(svc.Stay, mw).Register(propertiesGroup, draftsGroup)

	bookingsGroup := root.Group("/bookings")
	api.NewBookingHandler(svc.Bookings, mw).Register(propertiesGroup, bookingsGroup)

	favoritesGroup := root.Group("/favorites")
	api.NewFavoriteHandler(svc.Favorites, mw).Register(favoritesGroup)

	adminGroup := root.Group("/admin")
	api.NewAdminHandler(svc.Bookings, mw).Register(adminGroup)

	if cfg.HTTP.SwaggerDir != "" {
		engine.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		engine.GET("/docs", func(c *gin.Context) {
			renderSwaggerUI(c.Writer, "/swagger/storehouse.swagger.json")
		})
	}

	return engine, nil
}

func newRateLimiter(client *redis.Client, formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit %q: %w", formatted, err)
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "rate_limiter:auth",
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate limiter store: %w", err)
	}

	return mgin.NewMiddleware(limiter.New(store, rate)), nil
}

func renderSwaggerUI(w http.ResponseWriter, jsonURL string) {
	html := fmt.Sprintf(`<!DOCTYPE html>
    <html>
    <head>
        <title>API Docs</title>
        <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@latest/swagger-ui.css">
    </head>
    <body>
        <div id="swagger-ui"></div>
        <script src="https://unpkg.com/swagger-ui-dist@latest/swagger-ui-bundle.js"></script>
        <script>
            window.onload = function() {
                window.ui = SwaggerUIBundle({
                    url: "%s",
                    dom_id: '#swagger-ui'
                });
            };
        </script>
    </body>
    </html>`, jsonURL)

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}
