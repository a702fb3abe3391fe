package config

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads a .env file when present. Missing files are fine; real
// deployments inject everything through the environment.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on process environment")
	}
}
