package main

import (
	"context"
	"log"

	"admissions-rag-be/internal/bootstrap"
	"admissions-rag-be/internal/config"
	"admissions-rag-be/internal/server"
	"admissions-rag-be/internal/tracer"
	"admissions-rag-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Shutdown()

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Recorder Service...")
		if err := container.RecorderService.Consume(context.Background()); err != nil {
			log.Printf("Background Recorder Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
