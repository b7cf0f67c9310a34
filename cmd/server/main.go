/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the time-off engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load YAML config
  2. Initialize SQLite store
  3. Assemble leave engine, vacation service, approval queue, reports
  4. Configure HTTP router, start the background sweeper
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (optional; defaults apply without one)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper, close the database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/timeoff.db"

  # Run with a config file
  ./server -config=config.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TechTreck-2/petruzdroba/api"
	"github.com/TechTreck-2/petruzdroba/approval"
	"github.com/TechTreck-2/petruzdroba/config"
	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/report"
	"github.com/TechTreck-2/petruzdroba/store/sqlite"
	"github.com/TechTreck-2/petruzdroba/vacation"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize store
	st, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	// Assemble services
	engine := leave.NewEngine(st, leave.WithDefaultAllotment(leave.NewAmount(cfg.Ledger.DefaultAllotmentMS)))
	vacations := vacation.NewService(st, nil)
	queue := approval.NewAggregator(engine, vacations, st, nil)
	sender := &report.SMTPSender{
		Addr:     cfg.Mail.Addr(),
		From:     cfg.Mail.From,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Host:     cfg.Mail.Host,
	}
	reports := report.NewService(st, st, sender)

	if err := queue.Refresh(context.Background()); err != nil {
		log.Printf("Warning: Failed to warm approval queue: %v", err)
	}

	handler := api.NewHandler(engine, vacations, queue, reports, st)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	// Background sweeper
	var sweeper *api.Sweeper
	if cfg.Sweep.Enabled {
		sweeper = api.NewSweeper(st, engine, cfg.Sweep.Interval)
		sweeper.Start()
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if sweeper != nil {
		sweeper.Stop()
	}

	log.Println("Server stopped")
}
