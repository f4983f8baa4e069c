package config

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	TenantID  string
	Turso     TursoConfig
	ProjectID string
	Rating    RatingConfig
	Form      FormConfig
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// RatingConfig carries the tunable parameters of the rating engine. Defaults
// match rating.DefaultParams; overrides are read from RATING_* env vars.
type RatingConfig struct {
	KFactor       float64
	Spread        float64
	DefaultRating float64
	MinRating     float64
	MaxRating     float64
}

// FormConfig carries the tunable parameters of the form engine.
type FormConfig struct {
	WindowSize int
}
