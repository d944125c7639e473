package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	MongoURI  string
	MongoDB   string
	JWTSecret string
	JWTExpiry int // hours
	UploadDir string
}

// Load reads configuration from the environment, after loading a .env
// file when one is present. JWT_SECRET has no safe default and is fatal
// when unset.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:      "8081",
		MongoURI:  "mongodb://localhost:27017",
		MongoDB:   "recipe_db",
		JWTExpiry: 2,
		UploadDir: "uploads",
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DB"); v != "" {
		cfg.MongoDB = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := getEnvInt("JWT_EXPIRY_HOURS"); v > 0 {
		cfg.JWTExpiry = v
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set in the environment")
	}

	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
