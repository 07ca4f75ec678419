package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-deforest-monitor/internal/config"
	"go-deforest-monitor/internal/container"
	"go-deforest-monitor/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := container.New(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to build application")
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    cfg.ServerAddress(),
		Handler: c.Handler,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address":       server.Addr,
			"workers":       cfg.Workers,
			"mask_encoding": cfg.MaskEncoding,
		}).Info("Starting deforestation monitor")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
