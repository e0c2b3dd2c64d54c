package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OpenAI   OpenAIConfig
	Minio    MinioConfig
	Kafka    KafkaConfig
	Realtime RealtimeConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN builds the mysql connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

type RedisConfig struct {
	URI string
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	CaptionCacheTTL time.Duration
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RealtimeConfig struct {
	ServerID         string
	TrendingInterval time.Duration
	TrendingWindow   time.Duration
	TrendingModulus  int
	LeaderboardSize  int
	LeaderboardTTL   time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	viper.SetDefault("CYBERPLACE_HOST", "0.0.0.0")
	viper.SetDefault("CYBERPLACE_PORT", "8080")
	viper.SetDefault("CYBERPLACE_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("CYBERPLACE_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("CYBERPLACE_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("CYBERPLACE_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CYBERPLACE_JWT_SECRET", "secret")
	viper.SetDefault("CYBERPLACE_JWT_EXPIRE", 24*time.Hour)
	viper.SetDefault("MYSQL_HOST", "localhost")
	viper.SetDefault("MYSQL_PORT", "3306")
	viper.SetDefault("MYSQL_USER", "root")
	viper.SetDefault("MYSQL_PASSWORD", "password")
	viper.SetDefault("MYSQL_DB", "cyberplace")
	viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("OPENAI_CAPTION_CACHE_TTL", 24*time.Hour)
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_BUCKET", "cyberplace-memes")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_TOPIC", "cyberplace.activity")
	viper.SetDefault("REALTIME_SERVER_ID", "cyberplace-1")
	viper.SetDefault("TRENDING_INTERVAL", 30*time.Second)
	viper.SetDefault("TRENDING_WINDOW", time.Hour)
	viper.SetDefault("TRENDING_MODULUS", 10)
	viper.SetDefault("LEADERBOARD_SIZE", 10)
	viper.SetDefault("LEADERBOARD_CACHE_TTL", 30*time.Second)
	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:           viper.GetString("CYBERPLACE_HOST"),
			Port:           viper.GetString("CYBERPLACE_PORT"),
			ReadTimeout:    viper.GetDuration("CYBERPLACE_READ_TIMEOUT"),
			WriteTimeout:   viper.GetDuration("CYBERPLACE_WRITE_TIMEOUT"),
			IdleTimeout:    viper.GetDuration("CYBERPLACE_IDLE_TIMEOUT"),
			AllowedOrigins: splitAndTrim(viper.GetString("CYBERPLACE_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("MYSQL_HOST"),
			Port:     viper.GetString("MYSQL_PORT"),
			User:     viper.GetString("MYSQL_USER"),
			Password: viper.GetString("MYSQL_PASSWORD"),
			DBName:   viper.GetString("MYSQL_DB"),
		},
		Redis: RedisConfig{
			URI: viper.GetString("REDIS_URL"),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("CYBERPLACE_JWT_SECRET"),
			ExpirationTime: viper.GetDuration("CYBERPLACE_JWT_EXPIRE"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          viper.GetString("OPENAI_API_KEY"),
			BaseURL:         viper.GetString("OPENAI_BASE_URL"),
			Model:           viper.GetString("OPENAI_MODEL"),
			CaptionCacheTTL: viper.GetDuration("OPENAI_CAPTION_CACHE_TTL"),
		},
		Minio: MinioConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
		},
		Kafka: KafkaConfig{
			Brokers: splitAndTrim(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Realtime: RealtimeConfig{
			ServerID:         viper.GetString("REALTIME_SERVER_ID"),
			TrendingInterval: viper.GetDuration("TRENDING_INTERVAL"),
			TrendingWindow:   viper.GetDuration("TRENDING_WINDOW"),
			TrendingModulus:  viper.GetInt("TRENDING_MODULUS"),
			LeaderboardSize:  viper.GetInt("LEADERBOARD_SIZE"),
			LeaderboardTTL:   viper.GetDuration("LEADERBOARD_CACHE_TTL"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	return cfg, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
