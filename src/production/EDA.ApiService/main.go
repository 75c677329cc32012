package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gitlab.com/maplesense1/energy.api_server/src/production/EDA.ApiService/middleware"
	container "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Container"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer shutdownContainer(ctr)

	logger := ctr.GetLogger()
	logger.Info("Starting Energy Data API")

	config := ctr.GetConfig()

	// Connect to MongoDB; the service cannot run without it
	ctx, cancel := context.WithTimeout(context.Background(), config.Database.ConnectTimeout+30*time.Second)
	defer cancel()

	if err := ctr.InitializeDatabase(ctx); err != nil {
		shutdownContainer(ctr)
		logger.FatalWithError(err, "Failed to initialize database")
	}

	energyController, err := ctr.NewEnergyController()
	if err != nil {
		shutdownContainer(ctr)
		logger.FatalWithError(err, "Failed to create energy controller")
	}
	// Runs before the publisher and database are closed
	ctr.AddCleanupFunc(energyController.Wait)

	gin.SetMode(config.Server.GinMode)
	binding.EnableDecoderUseNumber = true
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	if config.CORSEnabled() {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  config.CORS.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        time.Duration(config.CORS.MaxAge) * time.Second,
		}))
	}

	energyController.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         config.Address(),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]interface{}{
			"address":    srv.Addr,
			"database":   config.Database.Name,
			"collection": config.Database.Collection,
			"mqtt":       config.MQTTEnabled(),
		}).Info("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	logger.Info("Energy Data API running... press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		logger.Info("Shutting down...")
	case err := <-serverErr:
		shutdownContainer(ctr)
		logger.FatalWithError(err, "Failed to start HTTP server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}

// shutdownContainer closes storage and the broker connection. Fatal exits skip
// deferred calls, so it is also called before them.
func shutdownContainer(ctr *container.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = ctr.Shutdown(ctx)
}
