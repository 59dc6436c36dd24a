package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/t1a2l/SkyTools/internal/api"
	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/hook"
	"github.com/t1a2l/SkyTools/internal/profiler"
	"github.com/t1a2l/SkyTools/internal/workload"
)

func main() {
	log.Println("Starting st-profiler...")

	// 1. Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Expose the instrumentable targets and build the profiler
	resolver := hook.NewRegistryResolver()
	if err := workload.RegisterTargets(resolver); err != nil {
		log.Fatalf("Failed to register workload targets: %v", err)
	}

	prof, err := profiler.New(cfg, resolver, hook.NewSwapInterceptor())
	if err != nil {
		log.Fatalf("Failed to create profiler: %v", err)
	}

	// 3. Track the configured subjects. One bad subject does not keep the
	// rest from being tracked.
	tracked := 0
	for _, def := range cfg.Profiler.Subjects {
		if err := prof.Track(def.Type, def.Method, def.Params); err != nil {
			log.Printf("Warning: skipping subject %s.%s: %v", def.Type, def.Method, err)
			continue
		}
		tracked++
	}
	log.Printf("Tracking %d of %d configured subjects.", tracked, len(cfg.Profiler.Subjects))

	// 4. Start measuring and serving diagnostics
	if err := prof.Start(); err != nil {
		log.Fatalf("Failed to start profiler: %v", err)
	}

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg.API, prof)
		server.Start()
	}

	workloadDone := make(chan struct{})
	go workload.Run(workloadDone)

	// 5. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	log.Println("Shutdown signal received, stopping profiler...")
	close(workloadDone)
	prof.Stop()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("ERROR: API server forced to shutdown: %v", err)
		}
	}

	// 6. Emit the final report
	os.Stdout.WriteString(prof.Dump())
	log.Println("Shutdown complete.")
}
