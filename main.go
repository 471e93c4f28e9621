package main

import (
	"log"

	"github.com/planupp/planupp/config"
	"github.com/planupp/planupp/internal/chat"
	"github.com/planupp/planupp/internal/event"
	"github.com/planupp/planupp/internal/report"
	"github.com/planupp/planupp/internal/user"
	"github.com/planupp/planupp/routes"
)

// @title PlanUpp REST API
// @version 1.0
// @description Social sports-event coordination server.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{}, &user.RefreshToken{},
		&event.Event{},
		&chat.Chat{}, &chat.Message{},
		&report.Report{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	r := routes.SetupRoutes()

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
