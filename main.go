package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/arhub/ar-hub-backend/api"
	"github.com/arhub/ar-hub-backend/database"
	"github.com/arhub/ar-hub-backend/models"
	"github.com/arhub/ar-hub-backend/offline"
	"github.com/arhub/ar-hub-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	db, err := openDatabase()
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// If generating models, run generation and exit
	if strings.ToLower(os.Getenv("GENERATE_MODELS")) == "true" {
		fmt.Println("Generating models and query helpers...")
		models.GenerateModels(db)
		return
	}

	if err := models.Migrate(db); err != nil {
		fmt.Printf("Error migrating schema: %v\n", err)
		os.Exit(1)
	}

	currentDB := database.New(db)

	ext, err := buildExternalServices()
	if err != nil {
		fmt.Printf("Error initializing external services: %v\n", err)
		os.Exit(1)
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, ext)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// openDatabase connects to postgres using DATABASE_URL or the discrete
// SUPABASE_DB_* variables, enables the uuid extension and optionally
// attaches a read replica.
func openDatabase() (*gorm.DB, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		connStr = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			getEnv("SUPABASE_DB_HOST", "localhost"),
			getEnv("SUPABASE_DB_USER", "postgres"),
			getEnv("SUPABASE_DB_PASSWORD", ""),
			getEnv("SUPABASE_DB_NAME", "arhub"),
			getEnv("SUPABASE_DB_PORT", "5432"),
		)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return nil, err
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, err
	}

	// Heavy search traffic can go to a read replica when one is configured.
	if replicaDSN := os.Getenv("DB_REPLICA_DSN"); replicaDSN != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(replicaDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, err
		}
		fmt.Println("Read replica attached")
	}

	return db, nil
}

// buildExternalServices assembles the session validator, the storage
// signer pair and the offline cache gateway from the environment. Each
// collaborator degrades to a local stand-in when unconfigured.
func buildExternalServices() (api.ExternalServices, error) {
	var ext api.ExternalServices

	if projectID := os.Getenv("DESCOPE_PROJECT_ID"); projectID != "" {
		auth, err := services.NewDescopeAuth(projectID)
		if err != nil {
			return ext, err
		}
		ext.Auth = auth
	} else {
		fmt.Println("DESCOPE_PROJECT_ID not set; authenticated endpoints will reject all sessions")
		ext.Auth = services.UnconfiguredAuth{}
	}

	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		storage, err := services.NewS3Storage(context.Background(), services.S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          bucket,
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicBaseURL:   os.Getenv("PUBLIC_ASSET_BASE_URL"),
		})
		if err != nil {
			return ext, err
		}
		ext.URLs = storage
		ext.Uploads = storage
	} else {
		fmt.Println("S3_BUCKET not set; using local URL signer")
		signer := services.NewLocalSigner(
			getEnv("DOWNLOAD_SIGNING_SECRET", "dev-signing-secret"),
			getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		)
		ext.URLs = signer
		ext.Uploads = signer
	}

	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		gateway, err := offline.New(origin)
		if err != nil {
			return ext, err
		}
		installCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := gateway.Install(installCtx); err != nil {
			// Precache failures are not fatal; the gateway still proxies.
			fmt.Printf("Warning: offline precache failed: %v\n", err)
		}
		gateway.Activate()
		ext.Frontend = gateway
	}

	return ext, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

// getEnv returns the value of the environment variable key or a fallback value.
func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
