package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edushare/config"
	"edushare/internal/database"
	"edushare/internal/jobs"
	"edushare/internal/middleware"
	"edushare/internal/router"
	"edushare/internal/ws"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hub := ws.NewHub()
	svcs := router.NewServices(cfg, db, hub, router.NewFCM(&cfg.Firebase))

	scheduler := cron.New()
	retention := jobs.NewNotificationRetention(svcs.Notification, cfg.Notification.RetentionDays)
	if _, err := retention.Schedule(scheduler, cfg.Notification.CleanupSchedule); err != nil {
		log.Fatalf("schedule notification retention: %v", err)
	}
	scheduler.Start()

	limiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	engine := router.Setup(cfg, db, hub, svcs, limiter)
	// No WriteTimeout: it would also cut hijacked websocket connections.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	<-scheduler.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	limiter.Stop()
	fmt.Println("server stopped")
}
