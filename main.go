package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dslh/mcp-fieldgate/internal/config"
	"github.com/dslh/mcp-fieldgate/internal/dispatch"
	"github.com/dslh/mcp-fieldgate/internal/paths"
	"github.com/dslh/mcp-fieldgate/internal/registry"
	"github.com/dslh/mcp-fieldgate/internal/server"
	"github.com/dslh/mcp-fieldgate/internal/store"
	"github.com/dslh/mcp-fieldgate/internal/tools"
	"github.com/dslh/mcp-fieldgate/internal/validate"
)

const (
	serverName    = "mcp-fieldgate"
	serverVersion = "0.1.0"
)

func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	rules := validate.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = validate.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Fatalf("Failed to load categorization rules: %v", err)
		}
	}

	// The registry is fully populated here, before the first request, and
	// read-only afterwards.
	reg := registry.New()
	if err := tools.RegisterFacilityTools(reg, st); err != nil {
		log.Fatalf("Failed to register facility tools: %v", err)
	}
	if err := tools.RegisterDetectionTools(reg, st); err != nil {
		log.Fatalf("Failed to register detection tools: %v", err)
	}
	toolsDir, err := paths.ToolsDir()
	if err != nil {
		log.Fatalf("Failed to resolve tools directory: %v", err)
	}
	if err := tools.RegisterScriptedTools(reg, toolsDir); err != nil {
		log.Printf("Warning: failed to load scripted tools: %v", err)
	}

	dispatcher := dispatch.New(reg, rules, serverName, serverVersion)
	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.New(dispatcher).Handler(),
	}

	go func() {
		log.Printf("Starting %s on %s (%d tools)", serverName, cfg.Listen, reg.Len())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
