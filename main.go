package main

import (
	"log"

	"github.com/joho/godotenv"

	"qabot/app"
	"qabot/core/cmd"
)

func main() {
	// Missing .env is fine, real deployments use environment variables.
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}
