/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the StaffCentre operations server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env merged in when present)
  2. Initialize SQLite store
  3. Wire directory, calendar synchronizer, notifier and services
  4. Configure HTTP router and start the audit scheduler
  5. Start server with graceful shutdown

ENVIRONMENT:
  PORT                                HTTP port (default 8080)
  DB_PATH                             SQLite path (default ./data/staffcentre.db)
  JWT_SECRET                          Token signing secret (required)
  STAFF_HOLIDAY_CALENDAR_ID           Mirrored holiday calendar
  CONTRACTOR_AVAILABILITY_CALENDAR_ID Mirrored availability calendar
  AMQP_URL                            Mail broker; empty = log notifier
  MAIL_QUEUE                          Queue name (default mail.outbound)
  RECONCILE_INTERVAL                  Audit interval (default 1h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the audit scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsdesk/staffcentre/api"
	"github.com/opsdesk/staffcentre/calendar"
	"github.com/opsdesk/staffcentre/config"
	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/invoicing"
	"github.com/opsdesk/staffcentre/notify"
	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/opsdesk/staffcentre/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// TODO: swap MemoryClient for the hosted calendar client once its
	// service account is provisioned.
	calClient := calendar.NewMemoryClient()
	sync := calendar.NewSynchronizer(calClient, cfg.HolidayCalendarID, cfg.AvailabilityCalendarID)

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.AMQPURL != "" {
		notifier = notify.NewAMQPNotifier(cfg.AMQPURL, cfg.MailQueue)
		log.Printf("📨 Notifications via AMQP queue %q", cfg.MailQueue)
	}

	dir := staffdir.NewDirectory(store)
	holidaySvc := holiday.NewService(store, dir, sync, notifier)
	invoiceSvc := invoicing.NewService(store, dir)
	shiftSvc := shifts.NewService(store, invoiceSvc)

	handler := api.NewHandler(dir, holidaySvc, shiftSvc, invoiceSvc, cfg.JWTSecret)
	router := api.NewRouter(handler)

	scheduler := api.NewAuditScheduler(holidaySvc, cfg.ReconcileInterval)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost:%s", cfg.Port)
		log.Printf("📊 API available at http://localhost:%s/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
