package main

import (
	"context"
	"log"

	"ai-writepad-be/internal/bootstrap"
	"ai-writepad-be/internal/config"
	"ai-writepad-be/internal/model"
	"ai-writepad-be/internal/server"
	"ai-writepad-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDB(cfg.Database.Path)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.Document{}, &model.DocumentVersion{}, &model.Settings{}); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
