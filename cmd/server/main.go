/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the garnishment calculation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Load the latest rule snapshot (or seed from -rules)
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: garnish.db)
           Use ":memory:" for in-memory database
  -rules   Optional JSON rule set to seed when the database has none

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/garnish.db"

  # Seed rules on first run
  ./server -db=":memory:" -rules="./rules/us_states.json"

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  No environment variables currently. All config via flags.
  Future: DATABASE_URL, PORT, LOG_LEVEL

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

	"github.com/garnishedge/garnish-engine/api"
	"github.com/garnishedge/garnish-engine/factory"
	"github.com/garnishedge/garnish-engine/garnish"
	"github.com/garnishedge/garnish-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "garnish.db", "SQLite database path")
	rulesPath := flag.String("rules", "", "JSON rule set to seed when no snapshot exists")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)

	// Load the latest rule snapshot, seeding from file when the store is empty
	ctx := context.Background()
	if err := handler.LoadRules(ctx); err != nil {
		if !garnish.IsNotFound(err) {
			log.Fatalf("Failed to load rules: %v", err)
		}
		if *rulesPath == "" {
			log.Printf("Warning: no rule snapshot in database; upload one via POST /api/rules")
		} else {
			if err := seedRules(ctx, store, handler, *rulesPath); err != nil {
				log.Fatalf("Failed to seed rules from %s: %v", *rulesPath, err)
			}
		}
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedRules parses a rule set file, stores it as the first snapshot, and
// installs it on the handler.
func seedRules(ctx context.Context, store *sqlite.Store, handler *api.Handler, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rules, err := factory.NewRuleSetFactory().ParseRuleSet(data)
	if err != nil {
		return err
	}
	version, err := store.SaveRuleSet(ctx, rules, "seeded at startup")
	if err != nil {
		return err
	}
	handler.SetRules(rules, version)
	log.Printf("Seeded rule snapshot v%d from %s", version, path)
	return nil
}
