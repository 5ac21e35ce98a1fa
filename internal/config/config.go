package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Storage
	DatabasePath  string `envconfig:"DATABASE_PATH" default:"canchapp.db"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`
	UploadDir     string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxUploadMB   int64  `envconfig:"MAX_UPLOAD_MB" default:"10"`

	// HTTP
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	BaseURL         string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	SessionLifetime time.Duration `envconfig:"SESSION_LIFETIME" default:"24h"`
	DevAutoLogin    bool          `envconfig:"DEV_AUTO_LOGIN" default:"false"`

	// Tokens
	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"1h"`

	// Messaging and cache, both optional
	RabbitURL      string        `envconfig:"RABBIT_URL"`
	RabbitExchange string        `envconfig:"RABBIT_EXCHANGE" default:"canchapp.events"`
	NotifyQueue    string        `envconfig:"RABBIT_NOTIFY_QUEUE" default:"canchapp.notifications"`
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	SearchCacheTTL time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"2m"`

	// Marketplace
	CommissionPercent float64 `envconfig:"COMMISSION_PERCENT" default:"10"`

	// OAuth
	DiscordKey         string `envconfig:"DISCORD_KEY"`
	DiscordSecret      string `envconfig:"DISCORD_SECRET"`
	DiscordCallbackURL string `envconfig:"DISCORD_CALLBACK_URL"`
	GoogleKey          string `envconfig:"GOOGLE_KEY"`
	GoogleSecret       string `envconfig:"GOOGLE_SECRET"`
	GoogleCallbackURL  string `envconfig:"GOOGLE_CALLBACK_URL"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
