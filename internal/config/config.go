package config

import (
	"os"
	"strconv"

	"github.com/blastedheath77/drill-babies-pb-sub001/internal/form"
	"github.com/blastedheath77/drill-babies-pb-sub001/internal/rating"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getEnvFloat := func(key string, fallback float64) float64 {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Fatalf("Error: environment variable %s is not a valid float: %v", key, err)
		}
		return f
	}

	getEnvInt := func(key string, fallback int) int {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: environment variable %s is not a valid int: %v", key, err)
		}
		return i
	}

	ratingDefaults := rating.DefaultParams()
	formDefaults := form.DefaultParams()

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		TenantID: getEnv("TENANT_ID"),
		Port:     getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		Rating: RatingConfig{
			KFactor:       getEnvFloat("RATING_K_FACTOR", ratingDefaults.KFactor),
			Spread:        getEnvFloat("RATING_SPREAD", ratingDefaults.Spread),
			DefaultRating: getEnvFloat("RATING_DEFAULT", ratingDefaults.DefaultRating),
			MinRating:     getEnvFloat("RATING_MIN", ratingDefaults.MinRating),
			MaxRating:     getEnvFloat("RATING_MAX", ratingDefaults.MaxRating),
		},
		Form: FormConfig{
			WindowSize: getEnvInt("FORM_WINDOW_SIZE", formDefaults.WindowSize),
		},
	}
	return cfg
}

// RatingParams builds the rating engine parameters from the defaults plus any
// configured overrides.
func (c Config) RatingParams() rating.Params {
	p := rating.DefaultParams()
	p.KFactor = c.Rating.KFactor
	p.Spread = c.Rating.Spread
	p.DefaultRating = c.Rating.DefaultRating
	p.MinRating = c.Rating.MinRating
	p.MaxRating = c.Rating.MaxRating
	return p
}

// FormParams builds the form engine parameters from the defaults plus any
// configured overrides.
func (c Config) FormParams() form.Params {
	p := form.DefaultParams()
	p.WindowSize = c.Form.WindowSize
	return p
}
