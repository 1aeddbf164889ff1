package config

import (
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFile loads the first of .env/.env.local into the process
// environment. Existing variables are never overwritten, and a missing
// file is not an error.
func loadEnvFile() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
		return
	}
}
