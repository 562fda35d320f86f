package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	// Try to load .env file if it exists (for local development)
	// On production, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		// .env file not found is not an error - it might be on production
		// Environment variables are already available in os.Getenv()
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	// Critical variables - application cannot function without these
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("BOT_TOKEN") == "" {
		log.Println("WARNING: BOT_TOKEN not set - Telegram notifications and broadcasts will not work")
	}
	if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		log.Println("WARNING: FIREBASE_STORAGE_BUCKET not set - reward image uploads will fail")
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		log.Println("WARNING: GOOGLE_APPLICATION_CREDENTIALS not set - Firebase features may not work")
	}
	if os.Getenv("ADMIN_URL") == "" {
		log.Println("WARNING: ADMIN_URL not set - CORS may not work correctly")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// BroadcastDelay returns the pause between broadcast sends, read from
// BROADCAST_DELAY_MS.
func BroadcastDelay() time.Duration {
	raw := os.Getenv("BROADCAST_DELAY_MS")
	if raw == "" {
		return 50 * time.Millisecond
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		log.Printf("WARNING: invalid BROADCAST_DELAY_MS %q, using default", raw)
		return 50 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// GrantDeductsStock reports whether admin grants consume reward stock,
// read from GRANT_DEDUCTS_STOCK.
func GrantDeductsStock() bool {
	raw := os.Getenv("GRANT_DEDUCTS_STOCK")
	if raw == "" {
		return false
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("WARNING: invalid GRANT_DEDUCTS_STOCK %q, grants will not deduct stock", raw)
		return false
	}
	return enabled
}
