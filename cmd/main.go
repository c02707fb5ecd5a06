package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/findash/findash-server/cmd/api"
	"github.com/findash/findash-server/cmd/models"
	"github.com/findash/findash-server/db"
	"github.com/findash/findash-server/service/transactions"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "seed":
			runSeed()
			return
		default:
			log.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	startServer()
}

func openDatabase() *gorm.DB {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	return DB
}

func closeDatabase(DB *gorm.DB) {
	sqlDB, _ := DB.DB()
	sqlDB.Close()
	log.Println("Database connection closed")
}

func runMigrations() {
	DB := openDatabase()
	defer closeDatabase(DB)
	log.Println("Connected to the database for migrations")

	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {
	migrations := map[interface{}]string{
		&models.User{}:        "User",
		&models.Transaction{}: "Transaction",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	log.Println("All migrations completed successfully")
	return nil
}

// runSeed replaces the transaction collection from the bundled dataset. The
// CLI path skips the HTTP admin gate; shell access is the authorization.
func runSeed() {
	DB := openDatabase()
	defer closeDatabase(DB)

	dataPath := os.Getenv("SEED_DATA_PATH")
	if dataPath == "" {
		dataPath = "data/transactions.json"
	}

	seedData, err := transactions.LoadSeedData(dataPath)
	if err != nil {
		log.Fatalf("Seed data error: %v", err)
	}

	count, err := transactions.ReplaceAllTransactions(DB, seedData)
	if err != nil {
		log.Fatalf("Seed error: %v", err)
	}
	log.Printf("Database seeded successfully with %d transactions", count)
}

func startServer() {
	DB := openDatabase()
	defer closeDatabase(DB)
	log.Println("Connected to the database")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
}
