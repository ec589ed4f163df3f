package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	Port        string `env:"PORT" envDefault:"3000"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9100"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	Postgres PostgresConfig
	Valkey   ValkeyConfig
	Discord  DiscordConfig
	Twitch   TwitchConfig
	YouTube  YouTubeConfig
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"auxroom"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

type ValkeyConfig struct {
	Addr string `env:"VALKEY_ADDR" envDefault:"localhost:6379"`
}

type DiscordConfig struct {
	PublicKey string `env:"DISCORD_PUBLIC_KEY"`

	// DefaultRoomID backs the legacy playback buttons whose custom ids
	// carry no room part.
	DefaultRoomID string `env:"DISCORD_DEFAULT_ROOM_ID"`
}

type TwitchConfig struct {
	ClientID     string `env:"TWITCH_CLIENT_ID"`
	ClientSecret string `env:"TWITCH_CLIENT_SECRET"`
}

type YouTubeConfig struct {
	APIKey string `env:"YOUTUBE_API_KEY"`
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &c, nil
}
