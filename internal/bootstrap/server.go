package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightroutes/api"
	"github.com/Domenick1991/flightroutes/config"
	"github.com/Domenick1991/flightroutes/internal/service/flights"
	"github.com/Domenick1991/flightroutes/internal/service/loader"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"
)

// SwaggerDocURL is where the OpenAPI document is served when SwaggerDir is set.
const SwaggerDocURL = "/swagger/flights.swagger.json"

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, loaderSvc loader.LoaderUseCase) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(cfg.HTTP, flightSvc, loaderSvc),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTP.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the query and loader endpoints plus the API docs.
func NewRouter(cfg config.HTTPConfig, flightSvc flights.FlightUseCase, loaderSvc loader.LoaderUseCase) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	api.NewFlightHandler(flightSvc).Register(&router.RouterGroup)
	api.NewLoaderHandler(loaderSvc, loadLimiter(cfg.LoadRatePerMinute)).Register(router.Group("/loader"))

	if cfg.SwaggerDir != "" {
		router.Static("/swagger", cfg.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(SwaggerDocURL))))
	}
	return router
}

func loadLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
