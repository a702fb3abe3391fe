package main

import (
	"flag"
	"log"
	"os"

	"investcontrol/internal/routes"
	"investcontrol/pkg/config"
)

func main() {
	migrateUp := flag.Bool("migrate", false, "run pending SQL migrations and exit")
	migrateDown := flag.Bool("rollback", false, "roll back the last SQL migration and exit")
	flag.Parse()

	config.LoadEnv()

	// Initialize database
	config.InitDB()

	// One-shot migration modes for operators
	if *migrateUp {
		config.ExecuteMigrations()
		return
	}
	if *migrateDown {
		config.RollbackMigration()
		return
	}

	// Initialize RabbitMQ (optional, will log warning if not configured)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer func() {
			if config.RabbitMQ != nil {
				config.RabbitMQ.Close()
			}
		}()
		log.Println("RabbitMQ initialized successfully")
	} else {
		log.Println("RabbitMQ not configured, skipping initialization")
	}

	// Set up router
	r := routes.SetupRouter()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
