package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"devopsctl/api"
	"devopsctl/runner"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server with scheduled runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	// Load .env file if it exists (ignore errors if it doesn't).
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg, err := runner.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	pipeline, err := cfg.BuildPipeline(false)
	if err != nil {
		return err
	}

	scheduler := runner.NewScheduler(cfg, pipeline, store)
	go scheduler.Start()
	defer scheduler.Stop()

	server := api.NewServer(cfg, pipeline, store)

	log.Printf("starting devopsctl server on port %s (%d stages, %d schedules)",
		port, len(pipeline.Stages()), len(cfg.Schedules))

	if err := http.ListenAndServe(":"+port, server.Router()); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// getEnv gets environment variable or returns default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
